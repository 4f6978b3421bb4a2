package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 3
state_dir: /state
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRequiresConfigVersion(t *testing.T) {
	path := writeConfig(t, `
state_dir: /state
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config_version is required") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsUnsupportedBackend(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
store:
  backend: redis
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported store.backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestLoadRejectsUnknownTheme(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
ui:
  theme: neon
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "ui.theme") {
		t.Fatalf("expected theme error, got %v", err)
	}
}

func TestLoadRejectsUnknownLevel(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
logging:
  level: chatty
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected level error, got %v", err)
	}
}

func TestLoadRejectsBadFilterPattern(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
session:
  filters:
    - name: broken
      patterns: ["[a-"]
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "session.filters") {
		t.Fatalf("expected filter error, got %v", err)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	t.Setenv("TABULA_TEST_ROOT", "/srv/tabula")
	path := writeConfig(t, `
config_version: 1
state_dir: $TABULA_TEST_ROOT/state
store:
  backend: sqlite
session:
  recent_max: 3
  confirm_close_dirty: false
  filters:
    - name: Go
      patterns: ["*.go"]
ui:
  theme: gruvbox
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StateDir != "/srv/tabula/state" {
		t.Fatalf("expected expanded state dir, got %q", cfg.StateDir)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Fatalf("expected sqlite backend, got %q", cfg.Store.Backend)
	}
	if cfg.Session.RecentMax != 3 || cfg.Session.ConfirmCloseDirty {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if !cfg.Session.SweepOrphans {
		t.Fatalf("expected sweep_orphans default to survive")
	}
	if len(cfg.Session.Filters) != 1 || cfg.Session.Filters[0].Name != "Go" {
		t.Fatalf("unexpected filters: %+v", cfg.Session.Filters)
	}
	if cfg.UI.Theme != "gruvbox" {
		t.Fatalf("expected gruvbox theme, got %q", cfg.UI.Theme)
	}
	session := cfg.SessionConfig()
	if session.StateDir != cfg.StateDir || session.RecentMax != 3 || len(session.OpenFilters) != 1 {
		t.Fatalf("unexpected session config mapping: %+v", session)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected current config version, got %d", cfg.ConfigVersion)
	}
	if cfg.Store.Backend != "file" {
		t.Fatalf("expected file backend, got %q", cfg.Store.Backend)
	}
	if len(cfg.Session.Filters) == 0 {
		t.Fatalf("expected default filters")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$UID/$GID/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if strings.Contains(value, "$UID") || strings.Contains(value, "$GID") {
		t.Fatalf("expected UID/GID expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config to exist: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("expected written default to load: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "", "info", "WARN", "error"} {
		if _, err := ParseLevel(level); err != nil {
			t.Fatalf("parse %q: %v", level, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
