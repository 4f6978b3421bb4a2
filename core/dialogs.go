package core

import "pkt.systems/tabula/schema"

// Dialogs asks the user for paths. Callbacks run on the control goroutine;
// an empty result means the user cancelled.
type Dialogs interface {
	ShowOpenDialog(filters []schema.FileFilter, done func(paths []string))
	ShowSaveDialog(suggested string, done func(path string))
}

// StaticDialogs answers every prompt with fixed results.
type StaticDialogs struct {
	OpenPaths []string
	SavePath  string
}

// ShowOpenDialog returns OpenPaths.
func (d StaticDialogs) ShowOpenDialog(_ []schema.FileFilter, done func([]string)) {
	done(append([]string(nil), d.OpenPaths...))
}

// ShowSaveDialog returns SavePath.
func (d StaticDialogs) ShowSaveDialog(_ string, done func(string)) {
	done(d.SavePath)
}
