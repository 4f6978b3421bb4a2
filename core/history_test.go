package core

import (
	"reflect"
	"testing"
)

func TestRecentFilesTouch(t *testing.T) {
	r := newRecentFilesFromPersisted([]string{"A", "P", "B"}, 10)
	r.Touch("P")
	if got := r.Entries(); !reflect.DeepEqual(got, []string{"P", "A", "B"}) {
		t.Fatalf("expected [P A B], got %v", got)
	}
	r.Touch("")
	if got := r.Entries(); len(got) != 3 {
		t.Fatalf("empty path must be ignored, got %v", got)
	}
	if !r.Forget("A") || r.Forget("A") {
		t.Fatalf("expected forget to report presence once")
	}
}

func TestRecentFilesPersistedDeduped(t *testing.T) {
	r := newRecentFilesFromPersisted([]string{"A", "A", "B", "C"}, 2)
	if got := r.Entries(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("expected [A B], got %v", got)
	}
}

func TestIDGeneratorObserve(t *testing.T) {
	g := newIDGenerator()
	g.observe(7)
	g.observe(3)
	if id := g.document(); id != 8 {
		t.Fatalf("expected 8, got %d", id)
	}
	g.observeLabel("Untitled-", "Untitled-4")
	g.observeLabel("Untitled-", "notes.txt")
	g.observeLabel("Untitled-", "Untitled-x")
	if n := g.untitledNumber(); n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
}
