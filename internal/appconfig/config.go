package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/tabula/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Store         StoreConfig   `mapstructure:"store" yaml:"store"`
	Session       SessionConfig `mapstructure:"session" yaml:"session"`
	UI            UIConfig      `mapstructure:"ui" yaml:"ui"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// StoreConfig selects the document cache backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// SessionConfig controls document session behavior.
type SessionConfig struct {
	RecentMax         int                 `mapstructure:"recent_max" yaml:"recent_max"`
	ConfirmCloseDirty bool                `mapstructure:"confirm_close_dirty" yaml:"confirm_close_dirty"`
	SweepOrphans      bool                `mapstructure:"sweep_orphans" yaml:"sweep_orphans"`
	Filters           []schema.FileFilter `mapstructure:"filters" yaml:"filters"`
}

// UIConfig controls the terminal editor.
type UIConfig struct {
	Theme       string `mapstructure:"theme" yaml:"theme"`
	LineNumbers bool   `mapstructure:"line_numbers" yaml:"line_numbers"`
}

// LoggingConfig controls where and how much the editor logs.
type LoggingConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".tabula", "state"),
		Store: StoreConfig{
			Backend: "file",
			Path:    "",
		},
		Session: SessionConfig{
			RecentMax:         schema.DefaultRecentMax,
			ConfirmCloseDirty: true,
			SweepOrphans:      true,
			Filters:           schema.DefaultOpenFilters(),
		},
		UI: UIConfig{
			Theme:       string(schema.DefaultTheme),
			LineNumbers: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(home, ".tabula", "tabula.log"),
			Level: "info",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tabula", "config.yaml"), nil
}

// SessionConfig maps the file config onto the session core config.
func (c Config) SessionConfig() schema.SessionConfig {
	return schema.SessionConfig{
		StateDir:          c.StateDir,
		RecentMax:         c.Session.RecentMax,
		ConfirmCloseDirty: c.Session.ConfirmCloseDirty,
		SweepOrphans:      c.Session.SweepOrphans,
		OpenFilters:       c.Session.Filters,
	}
}
