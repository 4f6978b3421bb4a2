// Package engine is an in-memory text buffer engine. It tracks content,
// a per-buffer version counter, cursor and scroll position.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/tabula/schema"
)

type buffer struct {
	lines     []string
	version   int64
	cursor    Position
	scrollTop int
	language  string
	identity  string

	nextSub    int
	contentFns map[int]func()
	cursorFns  map[int]func(line, col int)
}

// Engine owns every buffer. It is safe for concurrent use; callbacks run
// on the caller's goroutine after internal locks are released.
type Engine struct {
	mu      sync.Mutex
	next    schema.BufferID
	buffers map[schema.BufferID]*buffer
	log     pslog.Logger
	lexers  int
}

// New constructs an empty engine.
func New(logger pslog.Logger) *Engine {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Engine{buffers: make(map[schema.BufferID]*buffer), log: logger}
}

// Load prepares language detection. It is safe to call more than once.
func (e *Engine) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := warmLexers()
	e.mu.Lock()
	e.lexers = n
	e.mu.Unlock()
	e.log.Debug("engine loaded", "lexers", n)
	return nil
}

// CreateBuffer allocates a buffer. Versions start at 1.
func (e *Engine) CreateBuffer(content, language, identity string) (schema.BufferID, error) {
	lang := DetectLanguage(language, identity, content)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	id := e.next
	e.buffers[id] = &buffer{
		lines:      splitLines(content),
		version:    1,
		language:   lang,
		identity:   identity,
		contentFns: make(map[int]func()),
		cursorFns:  make(map[int]func(line, col int)),
	}
	e.log.Trace("buffer created", "buffer", id, "language", lang)
	return id, nil
}

// Dispose releases a buffer and drops its subscriptions.
func (e *Engine) Dispose(id schema.BufferID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.buffers[id]; !ok {
		return fmt.Errorf("dispose buffer %d: %w", id, schema.ErrUnknownBuffer)
	}
	delete(e.buffers, id)
	e.log.Trace("buffer disposed", "buffer", id)
	return nil
}

// Len reports the number of live buffers.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.buffers)
}

// Content returns the buffer text.
func (e *Engine) Content(id schema.BufferID) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	return strings.Join(b.lines, "\n"), nil
}

// Lines returns a copy of the buffer lines.
func (e *Engine) Lines(id schema.BufferID) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), b.lines...), nil
}

// SetContent replaces the buffer text, bumps the version and notifies
// content subscribers. Identical content is a no-op.
func (e *Engine) SetContent(id schema.BufferID, content string) error {
	e.mu.Lock()
	b, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if strings.Join(b.lines, "\n") == content {
		e.mu.Unlock()
		return nil
	}
	b.lines = splitLines(content)
	b.version++
	moved := b.clampCursor()
	fns := contentCallbacks(b)
	cursorFns, cursor := cursorCallbacks(b)
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	if moved {
		for _, fn := range cursorFns {
			fn(cursor.Line, cursor.Column)
		}
	}
	return nil
}

// Version returns the content version counter.
func (e *Engine) Version(id schema.BufferID) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	return b.version, nil
}

// Language returns the detected language id.
func (e *Engine) Language(id schema.BufferID) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	return b.language, nil
}

// Cursor returns the zero-based cursor position.
func (e *Engine) Cursor(id schema.BufferID) (int, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return 0, 0, err
	}
	return b.cursor.Line, b.cursor.Column, nil
}

// SetCursor moves the cursor, clamped to the content, and notifies cursor
// subscribers when the position changes.
func (e *Engine) SetCursor(id schema.BufferID, line, col int) error {
	e.mu.Lock()
	b, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	before := b.cursor
	b.cursor = Position{Line: line, Column: col}
	b.clampCursor()
	if b.cursor == before {
		e.mu.Unlock()
		return nil
	}
	fns, cursor := cursorCallbacks(b)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(cursor.Line, cursor.Column)
	}
	return nil
}

// Scroll moves the top visible line by delta within a viewport of height rows.
func (e *Engine) Scroll(id schema.BufferID, delta, height int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	b.scrollTop = clampScroll(b.scrollTop+delta, len(b.lines), height)
	return b.scrollTop, nil
}

// SaveViewState snapshots cursor and scroll position.
func (e *Engine) SaveViewState(id schema.BufferID) (json.RawMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return encodeViewState(ViewState{Cursor: b.cursor, ScrollTop: b.scrollTop})
}

// RestoreViewState applies a snapshot from SaveViewState. Positions past the
// end of the content are clamped.
func (e *Engine) RestoreViewState(id schema.BufferID, state json.RawMessage) error {
	if len(state) == 0 || string(state) == "null" {
		return nil
	}
	var view ViewState
	if err := json.Unmarshal(state, &view); err != nil {
		return fmt.Errorf("restore view state for buffer %d: %w", id, err)
	}
	e.mu.Lock()
	b, err := e.lookup(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	b.cursor = view.Cursor
	b.clampCursor()
	b.scrollTop = clampScroll(view.ScrollTop, len(b.lines), 1)
	fns, cursor := cursorCallbacks(b)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(cursor.Line, cursor.Column)
	}
	return nil
}

// OnContentChanged registers fn for content changes on id.
func (e *Engine) OnContentChanged(id schema.BufferID, fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil || fn == nil {
		return func() {}
	}
	key := b.nextSub
	b.nextSub++
	b.contentFns[key] = fn
	return func() {
		e.mu.Lock()
		delete(b.contentFns, key)
		e.mu.Unlock()
	}
}

// OnCursorChanged registers fn for cursor moves on id.
func (e *Engine) OnCursorChanged(id schema.BufferID, fn func(line, col int)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, err := e.lookup(id)
	if err != nil || fn == nil {
		return func() {}
	}
	key := b.nextSub
	b.nextSub++
	b.cursorFns[key] = fn
	return func() {
		e.mu.Lock()
		delete(b.cursorFns, key)
		e.mu.Unlock()
	}
}

func (e *Engine) lookup(id schema.BufferID) (*buffer, error) {
	b, ok := e.buffers[id]
	if !ok {
		return nil, fmt.Errorf("buffer %d: %w", id, schema.ErrUnknownBuffer)
	}
	return b, nil
}

// clampCursor keeps the cursor inside the content and reports whether it moved.
func (b *buffer) clampCursor() bool {
	before := b.cursor
	if b.cursor.Line < 0 {
		b.cursor.Line = 0
	}
	if last := len(b.lines) - 1; b.cursor.Line > last {
		b.cursor.Line = last
	}
	width := len([]rune(b.lines[b.cursor.Line]))
	if b.cursor.Column < 0 {
		b.cursor.Column = 0
	}
	if b.cursor.Column > width {
		b.cursor.Column = width
	}
	return b.cursor != before
}

func contentCallbacks(b *buffer) []func() {
	out := make([]func(), 0, len(b.contentFns))
	for _, fn := range b.contentFns {
		out = append(out, fn)
	}
	return out
}

func cursorCallbacks(b *buffer) ([]func(line, col int), Position) {
	out := make([]func(line, col int), 0, len(b.cursorFns))
	for _, fn := range b.cursorFns {
		out = append(out, fn)
	}
	return out, b.cursor
}

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}
