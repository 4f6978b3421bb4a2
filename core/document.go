package core

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"pkt.systems/tabula/schema"
)

// Document binds an engine buffer to file identity and save state.
// dirty always equals Version(buffer) != savedVersion after any method
// returns.
type Document struct {
	id           schema.DocumentID
	label        string
	filePath     string
	engine       BufferEngine
	buffer       schema.BufferID
	viewState    json.RawMessage
	dirty        bool
	savedVersion int64
	disposed     bool
	tab          *Tab
	cancels      []func()
}

// newDocument allocates a buffer for content and marks it saved.
func newDocument(engine BufferEngine, id schema.DocumentID, label, filePath, content, language string) (*Document, error) {
	buf, err := engine.CreateBuffer(content, language, filePath)
	if err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	doc := &Document{
		id:       id,
		label:    label,
		filePath: filePath,
		engine:   engine,
		buffer:   buf,
	}
	if err := doc.markSaved(); err != nil {
		_ = engine.Dispose(buf)
		return nil, err
	}
	return doc, nil
}

// ID returns the document id.
func (d *Document) ID() schema.DocumentID { return d.id }

// Label returns the display name.
func (d *Document) Label() string { return d.label }

// FilePath returns the backing path or "" for untitled documents.
func (d *Document) FilePath() string { return d.filePath }

// Dirty reports unsaved changes.
func (d *Document) Dirty() bool { return d.dirty }

// SavedVersion returns the engine version at the last save.
func (d *Document) SavedVersion() int64 { return d.savedVersion }

// ViewState returns the last captured view state, nil before first capture.
func (d *Document) ViewState() json.RawMessage { return d.viewState }

// Buffer returns the engine handle.
func (d *Document) Buffer() schema.BufferID { return d.buffer }

// Disposed reports whether the buffer was released.
func (d *Document) Disposed() bool { return d.disposed }

// Tab returns the tab presenting the document.
func (d *Document) Tab() *Tab { return d.tab }

// Content returns the buffer text.
func (d *Document) Content() (string, error) {
	d.mustLive()
	return d.engine.Content(d.buffer)
}

// Version returns the current engine version.
func (d *Document) Version() (int64, error) {
	d.mustLive()
	return d.engine.Version(d.buffer)
}

// markSaved records the current version as saved.
func (d *Document) markSaved() error {
	v, err := d.Version()
	if err != nil {
		return err
	}
	_, err = d.markSavedAt(v)
	return err
}

// markSavedAt records version as saved and reports whether dirty flipped.
func (d *Document) markSavedAt(version int64) (bool, error) {
	d.savedVersion = version
	return d.contentChanged()
}

// contentChanged recomputes dirty and mirrors it onto the tab.
func (d *Document) contentChanged() (bool, error) {
	current, err := d.Version()
	if err != nil {
		return false, err
	}
	dirty := current != d.savedVersion
	flipped := dirty != d.dirty
	d.dirty = dirty
	if d.tab != nil {
		d.tab.Dirty = dirty
	}
	return flipped, nil
}

// setFilePath rebinds the document to path and relabels it.
func (d *Document) setFilePath(path string) {
	d.filePath = path
	d.label = filepath.Base(path)
	if d.tab != nil {
		d.tab.Label = d.label
		d.tab.Tooltip = path
	}
}

func (d *Document) captureViewState() error {
	d.mustLive()
	state, err := d.engine.SaveViewState(d.buffer)
	if err != nil {
		return err
	}
	d.viewState = state
	return nil
}

func (d *Document) restoreViewState() error {
	d.mustLive()
	if len(d.viewState) == 0 {
		return nil
	}
	return d.engine.RestoreViewState(d.buffer, d.viewState)
}

// Snapshot serializes the document for the persistence cache.
func (d *Document) Snapshot() (schema.DocumentSnapshot, error) {
	text, err := d.Content()
	if err != nil {
		return schema.DocumentSnapshot{}, err
	}
	version, err := d.Version()
	if err != nil {
		return schema.DocumentSnapshot{}, err
	}
	return schema.DocumentSnapshot{
		Label:                d.label,
		FilePath:             d.filePath,
		ViewState:            d.viewState,
		Dirty:                d.dirty,
		SavedVersion:         d.savedVersion,
		AlternativeVersionID: version,
		Text:                 text,
	}, nil
}

// dispose releases the buffer. A second call panics.
func (d *Document) dispose() error {
	d.mustLive()
	for _, cancel := range d.cancels {
		cancel()
	}
	d.cancels = nil
	d.disposed = true
	return d.engine.Dispose(d.buffer)
}

func (d *Document) mustLive() {
	if d.disposed {
		panic(fmt.Errorf("document %s: %w", d.id, schema.ErrDisposed))
	}
}
