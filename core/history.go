package core

import "pkt.systems/tabula/schema"

// recentFiles is a most-recent-first list of opened paths without duplicates.
type recentFiles struct {
	entries []string
	max     int
}

func newRecentFiles(max int) *recentFiles {
	if max <= 0 {
		max = schema.DefaultRecentMax
	}
	return &recentFiles{max: max}
}

func newRecentFilesFromPersisted(entries []string, max int) *recentFiles {
	r := newRecentFiles(max)
	r.entries = schema.NormalizeRecentFiles(entries, r.max)
	return r
}

// Touch moves path to the front, removing any older entry for it.
func (r *recentFiles) Touch(path string) {
	if path == "" {
		return
	}
	out := make([]string, 0, len(r.entries)+1)
	out = append(out, path)
	for _, entry := range r.entries {
		if entry != path {
			out = append(out, entry)
		}
	}
	if len(out) > r.max {
		out = out[:r.max]
	}
	r.entries = out
}

// Forget drops path from the list and reports whether it was present.
func (r *recentFiles) Forget(path string) bool {
	for i, entry := range r.entries {
		if entry == path {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *recentFiles) Entries() []string {
	return append([]string(nil), r.entries...)
}
