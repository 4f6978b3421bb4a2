package core

import (
	"os"

	"github.com/spf13/afero"
)

// FileSystem reads and writes whole text files.
type FileSystem interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
}

// AferoFS adapts an afero filesystem.
type AferoFS struct {
	Fs afero.Fs
}

// NewOSFileSystem returns a FileSystem backed by the host filesystem.
func NewOSFileSystem() AferoFS {
	return AferoFS{Fs: afero.NewOsFs()}
}

// ReadFile returns the file contents as text.
func (f AferoFS) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(f.Fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile replaces the file, keeping an existing file's permissions.
func (f AferoFS) WriteFile(path, content string) error {
	perm := os.FileMode(0o644)
	if info, err := f.Fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return afero.WriteFile(f.Fs, path, []byte(content), perm)
}
