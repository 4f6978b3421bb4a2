package core

import (
	"pkt.systems/pslog"
	"pkt.systems/tabula/internal/persist"
	"pkt.systems/tabula/schema"
)

// PropertiesStore persists the session state object.
type PropertiesStore interface {
	Load() (schema.SessionState, bool, error)
	Save(state schema.SessionState) error
}

// SessionDeps captures the collaborators of a session. Engine, Store and
// Properties are required.
type SessionDeps struct {
	Engine      BufferEngine
	Files       FileSystem
	Dialogs     Dialogs
	Store       persist.KV
	Properties  PropertiesStore
	Executor    Executor
	ClosePolicy ClosePolicy
	EventSink   EventSink
	Logger      pslog.Logger
}
