package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"pkt.systems/tabula/internal/appconfig"
	"pkt.systems/tabula/internal/persist"
	"pkt.systems/tabula/schema"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	stateDir := filepath.Join(root, "state")
	path := filepath.Join(root, "config.yaml")
	body := "config_version: 1\n" +
		"state_dir: " + stateDir + "\n" +
		"store:\n  backend: file\n" +
		"logging:\n  file: \"\"\n  level: info\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, stateDir
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func seedState(t *testing.T, stateDir string, state schema.SessionState, snapshots map[schema.DocumentID]schema.DocumentSnapshot) {
	t.Helper()
	kv, err := persist.OpenKV(persist.BackendFile, stateDir, "", nil)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	defer kv.Close()
	cache := persist.NewCache(kv, nil)
	for id, snapshot := range snapshots {
		if err := cache.Put(id, snapshot); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	props, err := persist.NewProperties(stateDir, nil)
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if err := props.Save(state); err != nil {
		t.Fatalf("save state: %v", err)
	}
}

func TestSessionList(t *testing.T) {
	cfgPath, stateDir := writeTestConfig(t)
	active := schema.DocumentID(2)
	seedState(t, stateDir, schema.SessionState{
		OpenFiles:   []schema.DocumentID{1, 2},
		ActiveTab:   &active,
		RecentFiles: []string{"/work/notes.txt"},
	}, map[schema.DocumentID]schema.DocumentSnapshot{
		1: {Label: "notes.txt", FilePath: "/work/notes.txt", Text: "hello"},
		2: {Label: "Untitled-1", Dirty: true, Text: "draft"},
	})

	out, err := runRoot(t, "-c", cfgPath, "session", "ls")
	if err != nil {
		t.Fatalf("session ls: %v", err)
	}
	if !strings.Contains(out, " 1\tnotes.txt\t/work/notes.txt") {
		t.Fatalf("expected saved document line, got:\n%s", out)
	}
	if !strings.Contains(out, "* 2\tUntitled-1 [modified]\t-") {
		t.Fatalf("expected active dirty untitled line, got:\n%s", out)
	}
	if !strings.Contains(out, "recent:\n  /work/notes.txt") {
		t.Fatalf("expected recent files, got:\n%s", out)
	}
}

func TestSessionScrub(t *testing.T) {
	cfgPath, stateDir := writeTestConfig(t)
	active := schema.DocumentID(2)
	seedState(t, stateDir, schema.SessionState{
		OpenFiles: []schema.DocumentID{1, 2},
		ActiveTab: &active,
	}, map[schema.DocumentID]schema.DocumentSnapshot{
		1: {Label: "a.txt", Text: "a"},
		7: {Label: "orphan", Text: "gone"},
	})

	out, err := runRoot(t, "-c", cfgPath, "session", "scrub")
	if err != nil {
		t.Fatalf("session scrub: %v", err)
	}
	if !strings.Contains(out, "open entries dropped: 1") || !strings.Contains(out, "snapshots removed: 1") {
		t.Fatalf("unexpected scrub output:\n%s", out)
	}

	props, err := persist.NewProperties(stateDir, nil)
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	state, ok, err := props.Load()
	if err != nil || !ok {
		t.Fatalf("load state: ok=%v err=%v", ok, err)
	}
	if len(state.OpenFiles) != 1 || state.OpenFiles[0] != 1 {
		t.Fatalf("expected open files [1], got %v", state.OpenFiles)
	}
	if state.ActiveTab != nil {
		t.Fatalf("expected active tab cleared, got %v", *state.ActiveTab)
	}
	kv, err := persist.OpenKV(persist.BackendFile, stateDir, "", nil)
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	defer kv.Close()
	ids, err := persist.NewCache(kv, nil).IDs()
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only snapshot 1, got %v", ids)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	out, err := runRoot(t, "-c", path, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Fatalf("expected path output %q, got %q", path, out)
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.ConfigVersion != appconfig.CurrentConfigVersion {
		t.Fatalf("unexpected config version %d", cfg.ConfigVersion)
	}
	if _, err := runRoot(t, "-c", path, "config", "init"); err == nil {
		t.Fatalf("expected second init without --force to fail")
	}
	if _, err := runRoot(t, "-c", path, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	cfgPath, stateDir := writeTestConfig(t)
	out, err := runRoot(t, "-c", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "state_dir: "+stateDir) {
		t.Fatalf("expected state_dir in output, got:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, runtime.Version()) {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestEditRejectsUnknownTheme(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	if _, err := runRoot(t, "-c", cfgPath, "edit", "--theme", "neon"); err == nil {
		t.Fatalf("expected unknown theme to fail")
	}
}
