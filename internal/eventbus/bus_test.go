package eventbus

import (
	"errors"
	"testing"
	"time"

	"pkt.systems/tabula/schema"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	line := 3
	bus.OnStatus(schema.Status{Label: "b.txt", Line: &line})

	select {
	case got := <-ch:
		if got.Type != EventStatus {
			t.Fatalf("expected status event, got %v", got.Type)
		}
		if got.Status.Label != "b.txt" || got.Status.Line == nil || *got.Status.Line != 3 {
			t.Fatalf("unexpected payload: %+v", got.Status)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestNoticeAndRecentFiles(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.OnRecentFiles(schema.RecentFilesEvent{Paths: []string{"/a"}})
	bus.OnNotice(schema.Notice{Level: schema.NoticeError, Err: schema.ErrRead})

	first := <-ch
	if first.Type != EventRecentFiles || len(first.Recent.Paths) != 1 {
		t.Fatalf("unexpected first event %+v", first)
	}
	second := <-ch
	if second.Type != EventNotice || !errors.Is(second.Notice.Err, schema.ErrRead) {
		t.Fatalf("unexpected second event %+v", second)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
	bus.OnStatus(schema.Status{})
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	bus := New(nil)
	bus.depth = 1
	_, cancel := bus.Subscribe()
	defer cancel()

	bus.OnStatus(schema.Status{})
	done := make(chan struct{})
	go func() {
		bus.OnStatus(schema.Status{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("publish blocked on full channel")
	}
}
