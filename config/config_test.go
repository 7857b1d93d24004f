package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "history_size: 1000\nreject_patterns:\n  - \"^h\\\\s*$\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HistorySize != 1000 {
		t.Fatalf("HistorySize = %d, want 1000", c.HistorySize)
	}
	if len(c.RejectPatterns) != 1 {
		t.Fatalf("RejectPatterns = %v, want 1 entry", c.RejectPatterns)
	}
}

func TestLoadMissingFileIsZeroValue(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load(missing) = %v, want nil", err)
	}
	if c.HistorySize != 0 || len(c.RejectPatterns) != 0 {
		t.Fatalf("Load(missing) = %+v, want zero value", c)
	}
}
