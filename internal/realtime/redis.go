package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tripdesk/agency-api/internal/config"
	"go.uber.org/zap"
)

// RedisBroker shares events between API instances over Redis pub/sub
type RedisBroker struct {
	client *redis.Client
	prefix string
	buffer int
	logger *zap.Logger
}

// NewRedisBroker connects to Redis and verifies the connection
func NewRedisBroker(ctx context.Context, cfg *config.RealtimeConfig, logger *zap.Logger) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	logger.Info("Redis realtime broker connected", zap.String("addr", cfg.RedisAddr))

	return &RedisBroker{client: client, prefix: cfg.ChannelPrefix, buffer: buffer, logger: logger}, nil
}

func (b *RedisBroker) channel(topic string) string {
	return b.prefix + topic
}

// Publish sends the JSON encoded event to the topic's channel
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(event.Topic), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe opens a pub/sub connection for one topic
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, b.channel(topic))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, b.buffer)
	done := make(chan struct{})
	subscription := newSubscription(out, func() {
		close(done)
		pubsub.Close()
	})

	go func() {
		defer close(out)
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				subscription.Unsubscribe()
				return
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("Discarding undecodable realtime event",
						zap.String("channel", msg.Channel),
						zap.Error(err),
					)
					continue
				}
				select {
				case out <- event:
				default:
					b.logger.Warn("Dropping realtime event for slow subscriber", zap.String("topic", topic))
				}
			}
		}
	}()

	return subscription, nil
}

// Close closes the Redis client
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
