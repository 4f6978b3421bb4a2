package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NormalizeFilePath expands a leading ~ and returns a clean absolute path.
func NormalizeFilePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// NormalizeRecentFiles drops blanks and duplicates, keeping the first
// occurrence of each path, and truncates to max entries when max > 0.
func NormalizeRecentFiles(paths []string, max int) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// UntitledLabel returns the label for the nth untitled document.
func UntitledLabel(prefix string, n int) string {
	if prefix == "" {
		prefix = "Untitled-"
	}
	return prefix + strconv.Itoa(n)
}
