package core

import (
	"context"
	"encoding/json"
	"sync"

	"pkt.systems/tabula/schema"
)

// BufferEngine is the text engine behind every document. The session never
// looks inside view states; they are stored and handed back verbatim.
type BufferEngine interface {
	CreateBuffer(content, language, identity string) (schema.BufferID, error)
	Dispose(id schema.BufferID) error
	Content(id schema.BufferID) (string, error)
	SetContent(id schema.BufferID, content string) error
	Version(id schema.BufferID) (int64, error)
	SaveViewState(id schema.BufferID) (json.RawMessage, error)
	RestoreViewState(id schema.BufferID, state json.RawMessage) error
	Language(id schema.BufferID) (string, error)
	Cursor(id schema.BufferID) (line, col int, err error)
	OnContentChanged(id schema.BufferID, fn func()) (cancel func())
	OnCursorChanged(id schema.BufferID, fn func(line, col int)) (cancel func())
}

// EngineLoader is implemented by engines that need one-time initialization.
type EngineLoader interface {
	Load(ctx context.Context) error
}

// loadGate runs a loader once and lets any number of waiters share the result.
type loadGate struct {
	once sync.Once
	done chan struct{}
	err  error
	load func(ctx context.Context) error
}

func newLoadGate(load func(ctx context.Context) error) *loadGate {
	return &loadGate{done: make(chan struct{}), load: load}
}

// start kicks off the load on first call and returns the shared completion channel.
func (g *loadGate) start(ctx context.Context) <-chan struct{} {
	g.once.Do(func() {
		go func() {
			defer close(g.done)
			if g.load != nil {
				g.err = g.load(context.WithoutCancel(ctx))
			}
		}()
	})
	return g.done
}

// wait blocks until the load finished or ctx is done.
func (g *loadGate) wait(ctx context.Context) error {
	select {
	case <-g.start(ctx):
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
