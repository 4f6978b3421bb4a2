package persist

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pkt.systems/pslog"
)

// KV is the durable key-value store behind the document cache.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Backend names a KV implementation.
type Backend string

const (
	// BackendFile stores one file per key under a directory.
	BackendFile Backend = "file"
	// BackendSQLite stores keys in a SQLite database.
	BackendSQLite Backend = "sqlite"
	// BackendMemory keeps keys in memory only.
	BackendMemory Backend = "memory"
)

// OpenKV opens the configured backend rooted at stateDir.
// An empty path selects the backend's default location inside stateDir.
func OpenKV(backend Backend, stateDir, path string, logger pslog.Logger) (KV, error) {
	switch backend {
	case BackendFile, "":
		if path == "" {
			path = filepath.Join(stateDir, "documents")
		}
		return NewFileKV(path, logger)
	case BackendSQLite:
		if path == "" {
			path = filepath.Join(stateDir, "documents.db")
		}
		return NewSQLiteKV(path, logger)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// MemoryKV is an in-memory KV.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the value for key.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Keys lists keys with the given prefix in sorted order.
func (m *MemoryKV) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op.
func (m *MemoryKV) Close() error { return nil }
