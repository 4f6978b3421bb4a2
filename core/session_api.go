package core

import (
	"context"

	"pkt.systems/tabula/schema"
)

// Session is the document/tab lifecycle manager. Apart from WaitEngine, every
// method must be called from the control goroutine, and every callback it
// takes is invoked there.
type Session interface {
	// WaitEngine starts engine initialization once and waits for it. Safe
	// from any goroutine.
	WaitEngine(ctx context.Context) error
	// Start waits for the engine, restores persisted documents and replays
	// commands dispatched before it was ready.
	Start(ctx context.Context) error
	Ready() bool
	Dispatch(cmd schema.Command)

	NewFile() (*Tab, error)
	OpenFile(path string, done func(*Tab, error))
	SaveTab(tab *Tab, forceDialog bool, done func(error))
	CloseTab(tab *Tab, done func(error))
	RevertFile(tab *Tab, done func(error))

	Tabs() *TabRegistry
	ActiveDocument() *Document
	Status() schema.Status
	RecentFiles() []string
	State() schema.SessionState

	// Shutdown captures view state and flushes every document and the
	// session state.
	Shutdown(ctx context.Context) error
}
