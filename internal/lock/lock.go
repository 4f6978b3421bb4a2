//go:build unix

// Package lock guards a state directory against concurrent editors.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
	"pkt.systems/pslog"

	"pkt.systems/tabula/schema"
)

const fileName = "tabula.lock"

// Lock is an exclusive advisory lock held on a state directory.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the lock for dir without blocking. It returns
// schema.ErrLocked when another process holds it.
func Acquire(ctx context.Context, dir string) (*Lock, error) {
	log := pslog.Ctx(ctx)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fileName)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			log.Warn("state dir locked", "path", path)
			return nil, fmt.Errorf("%s: %w", dir, schema.ErrLocked)
		}
		return nil, err
	}
	if err := file.Truncate(0); err == nil {
		_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	log.Debug("state dir lock acquired", "path", path)
	return &Lock{file: file, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. Calling it more than once is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil
	unlockErr := unix.Flock(int(file.Fd()), unix.LOCK_UN)
	return errors.Join(unlockErr, file.Close())
}
