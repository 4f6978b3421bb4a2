package schema

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFilter is a named set of glob patterns offered by the open dialog.
type FileFilter struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
}

// Validate ensures the filter has a name and well-formed patterns.
func (f FileFilter) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("file filter: name is required")
	}
	if len(f.Patterns) == 0 {
		return fmt.Errorf("file filter %q: at least one pattern is required", f.Name)
	}
	for _, pattern := range f.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("file filter %q: invalid pattern %q", f.Name, pattern)
		}
	}
	return nil
}

// Match reports whether the base name of path matches any pattern.
// Matching ignores case so *.r also accepts script.R.
func (f FileFilter) Match(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, pattern := range f.Patterns {
		ok, err := doublestar.Match(strings.ToLower(pattern), base)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Label renders the filter the way dialogs show it.
func (f FileFilter) Label() string {
	return fmt.Sprintf("%s (%s)", f.Name, strings.Join(f.Patterns, ", "))
}

// MatchAny reports whether path passes any of the filters.
// An empty filter list accepts everything.
func MatchAny(filters []FileFilter, path string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f.Match(path) {
			return true
		}
	}
	return false
}
