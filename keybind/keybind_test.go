package keybind

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFallsBackToDefault(t *testing.T) {
	tbl := New()
	if got := tbl.Get("KEY.ENTER"); got != "\r" {
		t.Fatalf("Get(KEY.ENTER) = %q, want \\r", got)
	}
}

func TestLoadMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strokes.json")
	if err := os.WriteFile(path, []byte(`{"OPTION.LEFT":"B"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tbl := New()
	if err := tbl.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := tbl.Get("OPTION.LEFT"); got != "B" {
		t.Fatalf("Get(OPTION.LEFT) = %q, want B", got)
	}
	if got := tbl.Get("KEY.ENTER"); got != "\r" {
		t.Fatalf("unrelated key clobbered: %q", got)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	tbl := New()
	if err := tbl.Load(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("Load(missing) = %v, want nil", err)
	}
}
