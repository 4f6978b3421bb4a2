package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/tabula/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventStatus carries a status bar update.
	EventStatus EventType = "status"
	// EventRecentFiles carries the recent files list.
	EventRecentFiles EventType = "recent_files"
	// EventNotice carries a user-visible notice.
	EventNotice EventType = "notice"
)

// Event is a UI-facing event emitted by the session.
type Event struct {
	Type   EventType
	Status schema.Status
	Recent schema.RecentFilesEvent
	Notice schema.Notice
}

// Bus fans session events out to subscribers without blocking the
// publisher. Events for a full subscriber are dropped.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns its channel and a cancel func.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "subs", count)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
			b.log.Debug("eventbus unsubscribe")
		})
	}
}

// OnStatus publishes a status event.
func (b *Bus) OnStatus(status schema.Status) {
	b.publish(Event{Type: EventStatus, Status: status})
}

// OnRecentFiles publishes the recent files list.
func (b *Bus) OnRecentFiles(event schema.RecentFilesEvent) {
	b.publish(Event{Type: EventRecentFiles, Recent: event})
}

// OnNotice publishes a notice.
func (b *Bus) OnNotice(notice schema.Notice) {
	b.publish(Event{Type: EventNotice, Notice: notice})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subs) == 0 {
		return
	}
	dropped := 0
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "type", event.Type, "count", dropped)
	}
}
