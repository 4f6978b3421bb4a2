//go:build unix

package lock

import (
	"errors"
	"os"
	"testing"

	"pkt.systems/tabula/schema"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(t.Context(), dir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := Acquire(t.Context(), dir); !errors.Is(err, schema.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	second, err := Acquire(t.Context(), dir)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	defer func() { _ = second.Release() }()
	if _, err := os.Stat(second.Path()); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}
