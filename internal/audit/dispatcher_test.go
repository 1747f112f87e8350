package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}

	// Nil receivers must be safe.
	d.Emit(context.Background(), NewEvent("sign_up"))
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected zero drops on nil dispatcher")
	}
}

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	event := NewEvent("sign_up_completed")
	event.Email = "alice@example.com"
	d.Emit(context.Background(), event)

	select {
	case got := <-sink.Events():
		if got.EventType != "sign_up_completed" {
			t.Fatalf("unexpected event type %q", got.EventType)
		}
		if got.Email != "alice@example.com" {
			t.Fatalf("unexpected email %q", got.Email)
		}
		if got.ID == "" {
			t.Fatal("expected event ID to be stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestCloseDrainsBufferedEvents(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 32}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), NewEvent("sign_in"))
	}
	d.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 drained events, got %d", len(lines))
	}
	for _, line := range lines {
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
	}
}

func TestDropIfFullCountsDrops(t *testing.T) {
	// A sink that never returns keeps the worker busy so the buffer
	// stays full.
	blocked := make(chan struct{})
	sink := sinkFunc(func(ctx context.Context, event Event) { <-blocked })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(blocked)
		d.Close()
	}()

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), NewEvent("sign_in"))
	}

	if d.Dropped() == 0 {
		t.Fatal("expected drops once the buffer filled")
	}
}

func TestEmitAfterCloseIsIgnored(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	d.Close()

	d.Emit(context.Background(), NewEvent("sign_in"))

	select {
	case <-sink.Events():
		t.Fatal("expected no delivery after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
