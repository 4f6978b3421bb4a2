package schema

import (
	"errors"
	"os"
	"path/filepath"
)

// SessionConfig defines defaults and limits for the session core.
type SessionConfig struct {
	StateDir          string
	RecentMax         int
	ConfirmCloseDirty bool
	SweepOrphans      bool
	OpenFilters       []FileFilter
	UntitledPrefix    string
}

// DefaultRecentMax is the default length of the recent files list.
const DefaultRecentMax = 10

// DefaultOpenFilters returns the filters offered by the open dialog.
func DefaultOpenFilters() []FileFilter {
	return []FileFilter{
		{Name: "R source files", Patterns: []string{"*.r", "*.rsrc", "*.rscript"}},
		{Name: "All Files", Patterns: []string{"*"}},
	}
}

// NormalizeSessionConfig applies defaults and validates the config.
func NormalizeSessionConfig(cfg SessionConfig) (SessionConfig, error) {
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return SessionConfig{}, err
		}
		cfg.StateDir = filepath.Join(home, ".tabula", "state")
	}
	if cfg.RecentMax == 0 {
		cfg.RecentMax = DefaultRecentMax
	}
	if cfg.RecentMax < 0 {
		return SessionConfig{}, errors.New("recent max must be positive")
	}
	if len(cfg.OpenFilters) == 0 {
		cfg.OpenFilters = DefaultOpenFilters()
	}
	for _, filter := range cfg.OpenFilters {
		if err := filter.Validate(); err != nil {
			return SessionConfig{}, err
		}
	}
	if cfg.UntitledPrefix == "" {
		cfg.UntitledPrefix = "Untitled-"
	}
	return cfg, nil
}
