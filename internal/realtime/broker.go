// Package realtime fans out events such as new chat messages to live
// subscribers. A single instance can use the in-process broker; several
// instances share events through Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tripdesk/agency-api/internal/config"
	"go.uber.org/zap"
)

// Event is one message delivered to subscribers of a topic
type Event struct {
	Topic     string          `json:"topic"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Published time.Time       `json:"published"`
}

// NewEvent marshals payload into an event
func NewEvent(topic, eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode event payload: %w", err)
	}
	return Event{Topic: topic, Type: eventType, Payload: data, Published: time.Now().UTC()}, nil
}

// Broker publishes events and hands out subscriptions per topic
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Close() error
}

// Subscription delivers events on C until Unsubscribe is called. C is
// closed once the subscription ends.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel func()
}

func newSubscription(c <-chan Event, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Unsubscribe stops delivery. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// ChatTopic is the topic carrying an assignment's chat messages
func ChatTopic(assignmentID fmt.Stringer) string {
	return "chat:" + assignmentID.String()
}

// NewBroker creates the broker selected by cfg.Mode
func NewBroker(ctx context.Context, cfg *config.RealtimeConfig, logger *zap.Logger) (Broker, error) {
	switch cfg.Mode {
	case "memory", "":
		return NewMemoryBroker(cfg.BufferSize, logger), nil
	case "redis":
		return NewRedisBroker(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported realtime mode: %s", cfg.Mode)
	}
}
