package schema

import "errors"

var (
	// ErrRead indicates a file could not be read.
	ErrRead = errors.New("read failed")
	// ErrWrite indicates a file could not be written.
	ErrWrite = errors.New("write failed")
	// ErrParse indicates a cached document snapshot could not be decoded.
	ErrParse = errors.New("corrupt snapshot")
	// ErrNotFound indicates a cached entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoSelection indicates the user dismissed a file dialog.
	ErrNoSelection = errors.New("no selection")
	// ErrDisposed indicates an operation on a disposed document or buffer.
	ErrDisposed = errors.New("document disposed")
	// ErrTabNotFound indicates a requested tab could not be found.
	ErrTabNotFound = errors.New("tab not found")
	// ErrNoDocument indicates the operation needs an active document.
	ErrNoDocument = errors.New("no active document")
	// ErrNoFilePath indicates the document was never saved to disk.
	ErrNoFilePath = errors.New("document has no file path")
	// ErrCloseCancelled indicates the close policy kept the tab open.
	ErrCloseCancelled = errors.New("close cancelled")
	// ErrUnknownBuffer indicates the engine has no buffer for the handle.
	ErrUnknownBuffer = errors.New("unknown buffer")
	// ErrUnknownCommand indicates an unsupported command id.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrAlreadyOpen indicates the target file is open in another tab.
	ErrAlreadyOpen = errors.New("file is open in another tab")
	// ErrLocked indicates another process owns the state directory.
	ErrLocked = errors.New("state directory is locked")
	// ErrInvalidTheme indicates an unsupported theme name.
	ErrInvalidTheme = errors.New("invalid theme")
)
