package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/interfaces"
)

func TestPublish_DeliversToSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	received := make(chan interfaces.Event, 2)
	handler := func(ctx context.Context, event interfaces.Event) error {
		received <- event
		return nil
	}

	if err := svc.Subscribe(interfaces.EventJobProgress, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := svc.Subscribe(interfaces.EventJobProgress, handler); err != nil {
		t.Fatalf("Failed to subscribe second handler: %v", err)
	}

	event := interfaces.Event{Type: interfaces.EventJobProgress, Payload: "payload"}
	if err := svc.Publish(context.Background(), event); err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case got := <-received:
			if got.Type != interfaces.EventJobProgress || got.Payload != "payload" {
				t.Errorf("Unexpected event delivered: %+v", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Handler %d never received the event", i)
		}
	}
}

func TestPublish_OnlyMatchingType(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	var calls int32
	svc.Subscribe(interfaces.EventJobFinished, func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventJobProgress})

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("Handler received an event of a different type")
	}
}

func TestPublish_HandlerErrorIsSwallowed(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	done := make(chan struct{})
	svc.Subscribe(interfaces.EventJobProgress, func(ctx context.Context, event interfaces.Event) error {
		close(done)
		return errors.New("handler blew up")
	})

	if err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventJobProgress}); err != nil {
		t.Fatalf("Publish should not surface handler errors, got: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Handler never ran")
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	if err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventJobFinished}); err != nil {
		t.Errorf("Publish with no subscribers should succeed, got: %v", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.Subscribe(interfaces.EventJobProgress, nil); err == nil {
		t.Error("Expected error subscribing a nil handler")
	}

	svc.Close()
	err := svc.Subscribe(interfaces.EventJobProgress, func(ctx context.Context, event interfaces.Event) error {
		return nil
	})
	if err == nil {
		t.Error("Expected error subscribing after close")
	}
}
