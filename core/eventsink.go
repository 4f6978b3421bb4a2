package core

import "pkt.systems/tabula/schema"

// EventSink receives session output for the status bar, menus and notices.
type EventSink interface {
	OnStatus(status schema.Status)
	OnRecentFiles(event schema.RecentFilesEvent)
	OnNotice(notice schema.Notice)
}

// Fanout forwards every event to each non-nil sink in order.
type Fanout []EventSink

// OnStatus forwards status.
func (f Fanout) OnStatus(status schema.Status) {
	for _, sink := range f {
		if sink == nil {
			continue
		}
		sink.OnStatus(status)
	}
}

// OnRecentFiles forwards the recent files list.
func (f Fanout) OnRecentFiles(event schema.RecentFilesEvent) {
	for _, sink := range f {
		if sink == nil {
			continue
		}
		sink.OnRecentFiles(event)
	}
}

// OnNotice forwards notice.
func (f Fanout) OnNotice(notice schema.Notice) {
	for _, sink := range f {
		if sink == nil {
			continue
		}
		sink.OnNotice(notice)
	}
}
