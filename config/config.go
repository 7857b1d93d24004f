// Package config loads the optional ambient configuration file
// ($HOME/.iridescent/config.yaml) that overrides compiled-in defaults for
// the history store: reject patterns and the retained-entry cap.
//
// Grounded on the teacher's inputrc.Config pattern of a settings object
// consulted by widgets throughout vim.go/history.go (e.g.
// opts.GetInt("history-size")); reworked from inputrc's text grammar to
// YAML since this project carries no inputrc parser of its own.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the ambient override layer, lowest precedence above
// compiled-in defaults and below CLI flags/environment variables.
type Config struct {
	// HistorySize overrides history.DefaultMaxEntries when non-zero.
	HistorySize int `yaml:"history_size"`
	// RejectPatterns overrides the default reject-pattern set when
	// non-empty; each is a regexp string matched with FullMatch semantics.
	RejectPatterns []string `yaml:"reject_patterns"`
}

// Load reads path and parses it as YAML. A missing file returns a zero
// Config and no error: the ambient layer is optional.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// DefaultPath returns $HOME/.iridescent/config.yaml, or "" if $HOME is
// unset.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return home + "/.iridescent/config.yaml"
}
