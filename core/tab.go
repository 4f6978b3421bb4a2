package core

import "pkt.systems/tabula/schema"

// Tab presents at most one document in the tab strip.
type Tab struct {
	Label     string
	Tooltip   string
	Closeable bool
	Dirty     bool
	doc       *Document
}

// newTab wraps doc and links it back to the tab.
func newTab(doc *Document) *Tab {
	t := &Tab{Closeable: true}
	if doc != nil {
		t.Label = doc.label
		t.Tooltip = doc.filePath
		t.Dirty = doc.dirty
		t.doc = doc
		doc.tab = t
	}
	return t
}

// Document returns the payload, nil for an empty tab.
func (t *Tab) Document() *Document {
	if t == nil {
		return nil
	}
	return t.doc
}

// Snapshot returns a renderer-friendly view of the tab.
func (t *Tab) Snapshot(active bool) schema.TabSnapshot {
	snap := schema.TabSnapshot{
		Label:   t.Label,
		Tooltip: t.Tooltip,
		Dirty:   t.Dirty,
		Active:  active,
	}
	if t.doc != nil {
		snap.ID = t.doc.id
		snap.Untitled = t.doc.filePath == ""
	}
	return snap
}
