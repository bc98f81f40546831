package events

import (
	"context"
	"sync"
)

// Broker is an in-memory fan-out of progress observations. Each subscriber
// gets its own buffered channel; a slow subscriber drops observations rather
// than blocking the producer.
type Broker struct {
	mu   sync.Mutex
	subs map[string][]chan Progress
}

const subscriberBuffer = 16

func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]chan Progress)}
}

// Subscribe returns a channel of observations for the given key and a cancel
// function that closes it.
func (b *Broker) Subscribe(key string) (<-chan Progress, func()) {
	ch := make(chan Progress, subscriberBuffer)

	b.mu.Lock()
	b.subs[key] = append(b.subs[key], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[key]
		for i, sub := range subs {
			if sub == ch {
				b.subs[key] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}

	return ch, cancel
}

func (b *Broker) Publish(_ context.Context, p Progress) {
	b.mu.Lock()
	subs := make([]chan Progress, len(b.subs[p.Key]))
	copy(subs, b.subs[p.Key])
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- p:
		default:
		}
	}
}
