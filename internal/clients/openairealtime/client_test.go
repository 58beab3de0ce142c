package openairealtime

import (
	"clinic-server/internal/observability"
	"clinic-server/internal/voicecall/engine"
	"context"
	"testing"
	"time"
)

func TestEmitDeliversWhileContextLive(t *testing.T) {
	c := New("key", "model", observability.NewLogger())
	c.events = make(chan engine.Event, 1)

	if !c.emit(context.Background(), engine.Event{Type: engine.EventSpeechStarted}) {
		t.Fatal("emit must succeed with buffer space and a live context")
	}
	event := <-c.events
	if event.Type != engine.EventSpeechStarted {
		t.Errorf("expected speech started event, got %v", event.Type)
	}
}

func TestEmitUnblocksWhenConsumerStops(t *testing.T) {
	c := New("key", "model", observability.NewLogger())
	c.events = make(chan engine.Event, 1)
	c.events <- engine.Event{Type: engine.EventAudioDelta}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan bool, 1)
	go func() {
		done <- c.emit(ctx, engine.Event{Type: engine.EventAudioDelta})
	}()

	select {
	case sent := <-done:
		if sent {
			t.Error("emit must report failure once the session context is cancelled")
		}
	case <-time.After(time.Second):
		t.Fatal("emit stayed blocked on a full buffer after cancellation")
	}
}
