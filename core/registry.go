package core

import (
	"fmt"

	"pkt.systems/tabula/schema"
)

// TabEventUpdated is emitted by Update so renderers can redraw a tab.
const TabEventUpdated schema.TabEventType = "updated"

// TabEvent is delivered to registry subscribers. Tab is nil for the
// empty-state activation.
type TabEvent struct {
	Type schema.TabEventType
	Tab  *Tab
}

type tabSubscriber struct {
	id int
	fn func(TabEvent)
}

// TabRegistry is the ordered tab collection. Events are delivered
// synchronously in subscription order. When the active tab changes the old
// tab's deactivated event always precedes the new tab's activated event.
type TabRegistry struct {
	tabs          []*Tab
	active        *Tab
	subs          []tabSubscriber
	nextSub       int
	emptyNotified bool
}

// NewTabRegistry returns an empty registry.
func NewTabRegistry() *TabRegistry {
	return &TabRegistry{}
}

// Subscribe registers fn for every event and returns a cancel func.
func (r *TabRegistry) Subscribe(fn func(TabEvent)) func() {
	id := r.nextSub
	r.nextSub++
	r.subs = append(r.subs, tabSubscriber{id: id, fn: fn})
	return func() {
		for i, sub := range r.subs {
			if sub.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

// Add appends tab without activating it.
func (r *TabRegistry) Add(tab *Tab) {
	if tab == nil || r.Index(tab) >= 0 {
		return
	}
	r.tabs = append(r.tabs, tab)
	r.emptyNotified = false
}

// Remove drops tab. Removing the active tab deactivates it and activates its
// neighbour, or signals the empty state when none remain.
func (r *TabRegistry) Remove(tab *Tab) error {
	idx := r.Index(tab)
	if idx < 0 {
		return fmt.Errorf("remove tab: %w", schema.ErrTabNotFound)
	}
	r.tabs = append(r.tabs[:idx:idx], r.tabs[idx+1:]...)
	if tab != r.active {
		if len(r.tabs) == 0 {
			r.emitEmpty()
		}
		return nil
	}
	r.active = nil
	r.emit(TabEvent{Type: schema.TabEventDeactivated, Tab: tab})
	if len(r.tabs) == 0 {
		r.emitEmpty()
		return nil
	}
	if idx >= len(r.tabs) {
		idx = len(r.tabs) - 1
	}
	r.active = r.tabs[idx]
	r.emit(TabEvent{Type: schema.TabEventActivated, Tab: r.active})
	return nil
}

// Activate makes tab active. A nil tab clears the active tab.
func (r *TabRegistry) Activate(tab *Tab) error {
	if tab == r.active {
		return nil
	}
	if tab != nil && r.Index(tab) < 0 {
		return fmt.Errorf("activate tab: %w", schema.ErrTabNotFound)
	}
	prev := r.active
	r.active = tab
	if prev != nil {
		r.emit(TabEvent{Type: schema.TabEventDeactivated, Tab: prev})
	}
	if tab == nil {
		r.emitEmpty()
		return nil
	}
	r.emit(TabEvent{Type: schema.TabEventActivated, Tab: tab})
	return nil
}

// Next activates the tab after the active one, wrapping at the end.
// With no active tab the first tab is activated.
func (r *TabRegistry) Next() *Tab {
	if len(r.tabs) == 0 {
		return nil
	}
	idx := r.Index(r.active)
	_ = r.Activate(r.tabs[(idx+1)%len(r.tabs)])
	return r.active
}

// Update tells subscribers that tab's presentation changed.
func (r *TabRegistry) Update(tab *Tab) {
	if r.Index(tab) < 0 {
		return
	}
	r.emit(TabEvent{Type: TabEventUpdated, Tab: tab})
}

// Move reorders tab to index, clamped to the valid range.
func (r *TabRegistry) Move(tab *Tab, index int) error {
	from := r.Index(tab)
	if from < 0 {
		return fmt.Errorf("move tab: %w", schema.ErrTabNotFound)
	}
	if index < 0 {
		index = 0
	}
	if index >= len(r.tabs) {
		index = len(r.tabs) - 1
	}
	r.tabs = append(r.tabs[:from:from], r.tabs[from+1:]...)
	r.tabs = append(r.tabs[:index], append([]*Tab{tab}, r.tabs[index:]...)...)
	return nil
}

// RequestClose emits closeRequested for tab, as a close button would.
func (r *TabRegistry) RequestClose(tab *Tab) {
	if r.Index(tab) < 0 {
		return
	}
	r.emit(TabEvent{Type: schema.TabEventCloseRequested, Tab: tab})
}

// RightClick emits rightClicked for tab.
func (r *TabRegistry) RightClick(tab *Tab) {
	if r.Index(tab) < 0 {
		return
	}
	r.emit(TabEvent{Type: schema.TabEventRightClicked, Tab: tab})
}

// Active returns the active tab or nil.
func (r *TabRegistry) Active() *Tab { return r.active }

// Len returns the number of tabs.
func (r *TabRegistry) Len() int { return len(r.tabs) }

// Tabs returns the tabs in display order.
func (r *TabRegistry) Tabs() []*Tab {
	return append([]*Tab(nil), r.tabs...)
}

// Index returns the position of tab or -1.
func (r *TabRegistry) Index(tab *Tab) int {
	if tab == nil {
		return -1
	}
	for i, t := range r.tabs {
		if t == tab {
			return i
		}
	}
	return -1
}

// Find returns the first tab matching match.
func (r *TabRegistry) Find(match func(*Tab) bool) *Tab {
	for _, t := range r.tabs {
		if match(t) {
			return t
		}
	}
	return nil
}

// Snapshot returns renderer views of every tab.
func (r *TabRegistry) Snapshot() []schema.TabSnapshot {
	out := make([]schema.TabSnapshot, 0, len(r.tabs))
	for _, t := range r.tabs {
		out = append(out, t.Snapshot(t == r.active))
	}
	return out
}

// emitEmpty sends activated(nil) once per transition to the empty state.
// A nil activation while tabs remain is always delivered.
func (r *TabRegistry) emitEmpty() {
	if len(r.tabs) == 0 {
		if r.emptyNotified {
			return
		}
		r.emptyNotified = true
	}
	r.emit(TabEvent{Type: schema.TabEventActivated})
}

func (r *TabRegistry) emit(event TabEvent) {
	subs := append([]tabSubscriber(nil), r.subs...)
	for _, sub := range subs {
		sub.fn(event)
	}
}
