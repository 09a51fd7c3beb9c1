package realtime

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrBrokerClosed is returned by a broker after Close
var ErrBrokerClosed = errors.New("broker closed")

const defaultBufferSize = 32

type memorySubscriber struct {
	ch chan Event
}

// MemoryBroker delivers events within one process. Slow subscribers drop
// events rather than block publishers.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySubscriber]struct{}
	buffer int
	closed bool
	logger *zap.Logger
}

// NewMemoryBroker creates an in-process broker
func NewMemoryBroker(bufferSize int, logger *zap.Logger) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &MemoryBroker{
		topics: make(map[string]map[*memorySubscriber]struct{}),
		buffer: bufferSize,
		logger: logger,
	}
}

// Publish delivers event to current subscribers of its topic
func (b *MemoryBroker) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}

	for sub := range b.topics[event.Topic] {
		select {
		case sub.ch <- event:
		default:
			b.logger.Warn("Dropping realtime event for slow subscriber",
				zap.String("topic", event.Topic),
				zap.String("type", event.Type),
			)
		}
	}
	return nil
}

// Subscribe registers a subscriber. The subscription also ends when ctx is done.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}

	sub := &memorySubscriber{ch: make(chan Event, b.buffer)}
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*memorySubscriber]struct{})
	}
	b.topics[topic][sub] = struct{}{}

	done := make(chan struct{})
	subscription := newSubscription(sub.ch, func() {
		close(done)
		b.remove(topic, sub)
	})
	go func() {
		select {
		case <-ctx.Done():
			subscription.Unsubscribe()
		case <-done:
		}
	}()
	return subscription, nil
}

func (b *MemoryBroker) remove(topic string, sub *memorySubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
	close(sub.ch)
}

// SubscriberCount returns the number of live subscriptions on a topic
func (b *MemoryBroker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close ends every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, subs := range b.topics {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.topics, topic)
	}
	return nil
}
