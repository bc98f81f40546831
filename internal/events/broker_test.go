package events

import (
	"context"
	"testing"
	"time"
)

func TestBrokerFanOut(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	ctx := context.Background()

	first, cancelFirst := broker.Subscribe("batch-1")
	defer cancelFirst()
	second, cancelSecond := broker.Subscribe("batch-1")
	defer cancelSecond()
	other, cancelOther := broker.Subscribe("batch-2")
	defer cancelOther()

	broker.Publish(ctx, Progress{Key: "batch-1", Status: StatusStarted, Message: "screening started"})

	for name, ch := range map[string]<-chan Progress{"first": first, "second": second} {
		select {
		case p := <-ch:
			if p.Status != StatusStarted {
				t.Fatalf("%s subscriber got unexpected status %s", name, p.Status)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber did not receive the event", name)
		}
	}

	select {
	case p := <-other:
		t.Fatalf("unrelated key received event: %+v", p)
	default:
	}
}

func TestBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	ctx := context.Background()

	_, cancel := broker.Subscribe("batch-1")
	defer cancel()

	// Overflow the buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			broker.Publish(ctx, Progress{Key: "batch-1", Status: StatusProcessing})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	t.Parallel()

	broker := NewBroker()
	ch, cancel := broker.Subscribe("batch-1")
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed after cancel")
	}

	// Publishing after unsubscribe must be a no-op.
	broker.Publish(context.Background(), Progress{Key: "batch-1", Status: StatusCompleted})
}
