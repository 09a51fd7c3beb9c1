package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/config"
	"go.uber.org/zap"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestMemoryBroker_PublishToTopicSubscribers(t *testing.T) {
	broker := NewMemoryBroker(4, zap.NewNop())
	ctx := context.Background()
	topic := ChatTopic(uuid.New())

	first, err := broker.Subscribe(ctx, topic)
	require.NoError(t, err)
	second, err := broker.Subscribe(ctx, topic)
	require.NoError(t, err)
	other, err := broker.Subscribe(ctx, "chat:other")
	require.NoError(t, err)

	ev, err := NewEvent(topic, "message", map[string]string{"text": "hello"})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, ev))

	assert.JSONEq(t, `{"text":"hello"}`, string(receive(t, first).Payload))
	assert.Equal(t, "message", receive(t, second).Type)
	assert.Empty(t, other.C)
}

func TestMemoryBroker_Unsubscribe(t *testing.T) {
	broker := NewMemoryBroker(1, zap.NewNop())
	sub, err := broker.Subscribe(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, 1, broker.SubscriberCount("t"))

	sub.Unsubscribe()
	sub.Unsubscribe()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Equal(t, 0, broker.SubscriberCount("t"))
	assert.NoError(t, broker.Publish(context.Background(), Event{Topic: "t"}))
}

func TestMemoryBroker_ContextCancelEndsSubscription(t *testing.T) {
	broker := NewMemoryBroker(1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := broker.Subscribe(ctx, "t")
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool { return broker.SubscriberCount("t") == 0 }, time.Second, 5*time.Millisecond)
	sub.Unsubscribe()
}

func TestMemoryBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	broker := NewMemoryBroker(1, zap.NewNop())
	sub, err := broker.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, broker.Publish(context.Background(), Event{Topic: "t", Type: "x"}))
	}
	assert.Len(t, sub.C, 1)
}

func TestMemoryBroker_Close(t *testing.T) {
	broker := NewMemoryBroker(1, zap.NewNop())
	sub, err := broker.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	require.NoError(t, broker.Close())
	_, ok := <-sub.C
	assert.False(t, ok)
	sub.Unsubscribe()

	assert.ErrorIs(t, broker.Publish(context.Background(), Event{Topic: "t"}), ErrBrokerClosed)
	_, err = broker.Subscribe(context.Background(), "t")
	assert.ErrorIs(t, err, ErrBrokerClosed)
}

func TestNewBroker_Modes(t *testing.T) {
	b, err := NewBroker(context.Background(), &config.RealtimeConfig{Mode: "memory"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryBroker{}, b)

	_, err = NewBroker(context.Background(), &config.RealtimeConfig{Mode: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}
