package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"pkt.systems/tabula/schema"
)

// completePath extends input towards the entries of its directory. Files
// must match filter; directories always qualify and carry a trailing
// separator. It returns the extended input and the candidates it chose from.
func completePath(fsys afero.Fs, input string, filter schema.FileFilter) (string, []string) {
	dir, prefix := filepath.Split(input)
	lookup := dir
	if lookup == "" {
		lookup = "."
	}
	lookup = expandHome(lookup)
	entries, err := afero.ReadDir(fsys, lookup)
	if err != nil {
		return input, nil
	}
	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if entry.IsDir() {
			candidates = append(candidates, name+string(filepath.Separator))
			continue
		}
		if filter.Match(name) {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)
	if len(candidates) == 0 {
		return input, nil
	}
	return dir + commonPrefix(candidates), candidates
}

// expandOpen turns open prompt input into paths. Plain paths pass through;
// glob patterns are expanded against fsys and filtered.
func expandOpen(fsys afero.Fs, input string, filter schema.FileFilter) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	path, err := schema.NormalizeFilePath(input)
	if err != nil {
		return nil, err
	}
	if !strings.ContainsAny(path, "*?[{") {
		return []string{path}, nil
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(path)) {
		return nil, doublestar.ErrBadPattern
	}
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(path))
	root := afero.NewIOFS(afero.NewBasePathFs(fsys, filepath.FromSlash(base)))
	matches, err := doublestar.Glob(root, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		if filter.Match(match) {
			paths = append(paths, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(match)))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func commonPrefix(values []string) string {
	prefix := values[0]
	for _, value := range values[1:] {
		for !strings.HasPrefix(value, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
