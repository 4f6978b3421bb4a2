package schema

import "strconv"

// DocumentID identifies an open document. Ids are persisted and never reused.
type DocumentID int64

// String renders the id in its persisted decimal form.
func (id DocumentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// BufferID is an opaque handle into the buffer engine.
type BufferID uint64

// ThemeName identifies a UI theme.
type ThemeName string

// CommandID identifies an inbound menu command.
type CommandID string

const (
	// CommandNewFile creates an untitled document.
	CommandNewFile CommandID = "new-file"
	// CommandOpenFile opens a file, prompting when no path is given.
	CommandOpenFile CommandID = "open-file"
	// CommandOpenRecent opens a path from the recent files list.
	CommandOpenRecent CommandID = "open-recent"
	// CommandCloseFile closes the active document.
	CommandCloseFile CommandID = "close-file"
	// CommandSaveFile saves the active document.
	CommandSaveFile CommandID = "save-file"
	// CommandSaveFileAs saves the active document to a new path.
	CommandSaveFileAs CommandID = "save-file-as"
	// CommandRevertFile reloads the active document from disk.
	CommandRevertFile CommandID = "revert-file"
	// CommandNextTab activates the tab after the active one.
	CommandNextTab CommandID = "next-tab"
)

// Command is an inbound command envelope from a menu or key binding.
type Command struct {
	ID   CommandID
	Path string
}

// LanguagePlainText is the language used when detection finds nothing.
const LanguagePlainText = "plaintext"

// TabEventType describes a tab strip event.
type TabEventType string

const (
	// TabEventActivated indicates a tab became active, or the strip emptied.
	TabEventActivated TabEventType = "activated"
	// TabEventDeactivated indicates the previously active tab lost focus.
	TabEventDeactivated TabEventType = "deactivated"
	// TabEventCloseRequested indicates the user asked to close a tab.
	TabEventCloseRequested TabEventType = "close_requested"
	// TabEventRightClicked indicates a context-menu request on a tab.
	TabEventRightClicked TabEventType = "right_clicked"
)
