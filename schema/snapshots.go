package schema

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DocumentSnapshot is the persisted form of a document, stored under
// CachedDocumentKey(id).
type DocumentSnapshot struct {
	Label                string          `json:"label"`
	FilePath             string          `json:"file_path,omitempty"`
	ViewState            json.RawMessage `json:"view_state,omitempty"`
	Dirty                bool            `json:"dirty"`
	SavedVersion         int64           `json:"saved_version"`
	AlternativeVersionID int64           `json:"alternative_version_id"`
	Text                 string          `json:"text"`
}

// SessionState is the persisted set of open documents and recent files.
type SessionState struct {
	OpenFiles   []DocumentID `json:"open_files"`
	ActiveTab   *DocumentID  `json:"active_tab,omitempty"`
	RecentFiles []string     `json:"recent_files"`
}

// Status is the status bar view of the active document.
// Line and Column are nil when no document is active.
type Status struct {
	Label    string
	Line     *int
	Column   *int
	Language string
}

// TabSnapshot is a read-only view of a tab for renderers.
type TabSnapshot struct {
	ID       DocumentID
	Label    string
	Tooltip  string
	Dirty    bool
	Active   bool
	Untitled bool
}

// DisplayLanguage upper-cases the first letter of a language name.
func DisplayLanguage(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
