package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"pkt.systems/pslog"
)

// FileKV stores each key as a file named after the key.
type FileKV struct {
	dir string
	log pslog.Logger
}

// NewFileKV constructs a FileKV rooted at dir.
func NewFileKV(dir string, logger pslog.Logger) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("store_dir", dir)
	}
	return &FileKV{dir: dir, log: logger}, nil
}

// Get reads the value stored under key.
func (s *FileKV) Get(key string) (string, bool, error) {
	path, err := s.pathForKey(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Trace("kv get miss", "key", key)
			}
			return "", false, nil
		}
		if s.log != nil {
			s.log.Warn("kv get failed", "key", key, "err", err)
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Set writes value under key atomically.
func (s *FileKV) Set(key, value string) error {
	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, []byte(value)); err != nil {
		if s.log != nil {
			s.log.Warn("kv set failed", "key", key, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("kv set ok", "key", key, "bytes", len(value))
	}
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (s *FileKV) Remove(key string) error {
	path, err := s.pathForKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		if s.log != nil {
			s.log.Warn("kv remove failed", "key", key, "err", err)
		}
		return err
	}
	return nil
}

// Keys lists stored keys with the given prefix.
func (s *FileKV) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op.
func (s *FileKV) Close() error { return nil }

func (s *FileKV) pathForKey(key string) (string, error) {
	if key == "" || key != sanitize(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
