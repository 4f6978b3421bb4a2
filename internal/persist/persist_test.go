package persist

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pkt.systems/tabula/schema"
)

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if _, ok, err := kv.Get("cached-document-1"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set("cached-document-1", `{"label":"a"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("other", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := kv.Get("cached-document-1")
	if err != nil || !ok || got != `{"label":"a"}` {
		t.Fatalf("unexpected get %q ok=%v err=%v", got, ok, err)
	}
	keys, err := kv.Keys(CachedDocumentPrefix)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"cached-document-1"}) {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := kv.Remove("cached-document-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := kv.Remove("cached-document-1"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestFileKVRejectsUnsafeKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	for _, key := range []string{"", "../escape", ".hidden", "a/b"} {
		if err := kv.Set(key, "x"); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "documents.db"), nil)
	if err != nil {
		t.Fatalf("new sqlite kv: %v", err)
	}
	defer kv.Close()
	if err := kv.Set("cached-document-2", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("cached-document-2", "two"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := kv.Set("cached-doc", "nope"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := kv.Get("cached-document-2")
	if err != nil || !ok || got != "two" {
		t.Fatalf("unexpected get %q ok=%v err=%v", got, ok, err)
	}
	keys, err := kv.Keys(CachedDocumentPrefix)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"cached-document-2"}) {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := kv.Remove("cached-document-2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := kv.Get("cached-document-2"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestCacheGetErrors(t *testing.T) {
	kv := NewMemoryKV()
	cache := NewCache(kv, nil)
	if _, err := cache.Get(7); !errors.Is(err, schema.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = kv.Set(CachedDocumentKey(7), "{not json")
	if _, err := cache.Get(7); !errors.Is(err, schema.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestCacheReconcileScrubsRemovedIDs(t *testing.T) {
	kv := NewMemoryKV()
	cache := NewCache(kv, nil)
	for _, id := range []schema.DocumentID{1, 2} {
		if err := cache.Put(id, schema.DocumentSnapshot{Label: "doc"}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	cache.Seed([]schema.DocumentID{1, 2})

	var ensured []schema.DocumentID
	ensure := func(id schema.DocumentID) error {
		ensured = append(ensured, id)
		return cache.Put(id, schema.DocumentSnapshot{Label: "new"})
	}
	if err := cache.Reconcile([]schema.DocumentID{2, 3}, ensure); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !reflect.DeepEqual(ensured, []schema.DocumentID{3}) {
		t.Fatalf("expected ensure for 3 only, got %v", ensured)
	}
	if ok, _ := cache.Has(1); ok {
		t.Fatalf("expected snapshot 1 scrubbed")
	}
	if ok, _ := cache.Has(3); !ok {
		t.Fatalf("expected snapshot 3 written")
	}
	if !reflect.DeepEqual(cache.Known(), []schema.DocumentID{2, 3}) {
		t.Fatalf("unexpected known ids %v", cache.Known())
	}
}

func TestCacheReconcileKeepsExistingSnapshot(t *testing.T) {
	cache := NewCache(NewMemoryKV(), nil)
	if err := cache.Put(4, schema.DocumentSnapshot{Label: "kept"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	called := false
	if err := cache.Reconcile([]schema.DocumentID{4}, func(schema.DocumentID) error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if called {
		t.Fatalf("ensure should not run for an existing snapshot")
	}
}

func TestCacheSweep(t *testing.T) {
	kv := NewMemoryKV()
	cache := NewCache(kv, nil)
	_ = cache.Put(1, schema.DocumentSnapshot{})
	_ = cache.Put(9, schema.DocumentSnapshot{})
	_ = kv.Set(CachedDocumentPrefix+"bogus", "x")
	_ = kv.Set("unrelated", "x")
	removed, err := cache.Sweep([]schema.DocumentID{1})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	ids, err := cache.IDs()
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if !reflect.DeepEqual(ids, []schema.DocumentID{1}) {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, ok, _ := kv.Get("unrelated"); !ok {
		t.Fatalf("sweep removed an unrelated key")
	}
}

func TestPropertiesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	props, err := NewProperties(dir, nil)
	if err != nil {
		t.Fatalf("new properties: %v", err)
	}
	if _, ok, err := props.Load(); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	active := schema.DocumentID(3)
	state := schema.SessionState{
		OpenFiles:   []schema.DocumentID{1, 3},
		ActiveTab:   &active,
		RecentFiles: []string{"/a/b.txt"},
	}
	if err := props.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := props.Load()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, state) {
		t.Fatalf("round trip mismatch: %#v vs %#v", got, state)
	}
	info, err := os.Stat(props.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestPropertiesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	props, err := NewProperties(dir, nil)
	if err != nil {
		t.Fatalf("new properties: %v", err)
	}
	if err := os.WriteFile(props.Path(), []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := props.Load(); !errors.Is(err, schema.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestOpenKVBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []Backend{BackendFile, BackendSQLite, BackendMemory} {
		kv, err := OpenKV(backend, dir, "", nil)
		if err != nil {
			t.Fatalf("open %s: %v", backend, err)
		}
		if err := kv.Set("k", "v"); err != nil {
			t.Fatalf("%s set: %v", backend, err)
		}
		_ = kv.Close()
	}
	if _, err := OpenKV("etcd", dir, "", nil); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
