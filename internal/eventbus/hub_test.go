package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, 4)
	hub.PublishNewRun("Tile Frenzy", 42, "abc123")

	select {
	case evt := <-ch:
		if evt.Type != TypeNewRun {
			t.Errorf("Type = %q, want %q", evt.Type, TypeNewRun)
		}
		if evt.Data["task_name"] != "Tile Frenzy" {
			t.Errorf("task_name = %v", evt.Data["task_name"])
		}
		if evt.Timestamp == 0 {
			t.Error("Timestamp should be filled in")
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = hub.Subscribe(ctx, 1)

	// second publish overflows the buffer and must be dropped, not block
	done := make(chan struct{})
	go func() {
		hub.PublishNewRun("a", 1, "h1")
		hub.PublishNewRun("b", 2, "h2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHubNilSafe(t *testing.T) {
	var hub *Hub
	// publishing on a nil hub is a no-op
	hub.Publish(Event{Type: TypeScanFinished})
	hub.PublishNewRun("x", 1, "h")
}

func TestHubUnsubscribeOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx, 1)
	cancel()

	// channel closes once the context is done
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
