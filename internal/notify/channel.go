package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the transport a dispatcher publishes through. Implementations
// provide at-least-once best-effort delivery intent; durability beyond the
// publish call is the broker's concern.
type Channel interface {
	// Connect performs the startup handshake with the broker.
	Connect(ctx context.Context) error

	// Publish delivers a message under the given routing key.
	Publish(ctx context.Context, routingKey string, body []byte) error

	// Close tears down the transport.
	Close() error
}

// envelope is the wire format the Redis channel pushes: the routing key
// alongside the raw notification body, so consumers can route without
// decoding the payload.
type envelope struct {
	RoutingKey  string          `json:"routing_key"`
	Body        json.RawMessage `json:"body"`
	PublishedAt time.Time       `json:"published_at"`
}

// RedisChannel implements Channel by pushing messages onto a Redis list,
// which the notification worker consumes from the other end.
type RedisChannel struct {
	client *redis.Client
	queue  string
}

// NewRedisChannel creates a RedisChannel publishing to the given list.
func NewRedisChannel(client *redis.Client, queue string) *RedisChannel {
	return &RedisChannel{client: client, queue: queue}
}

// Connect implements Channel using a ping as the handshake.
func (c *RedisChannel) Connect(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Publish implements Channel.
func (c *RedisChannel) Publish(ctx context.Context, routingKey string, body []byte) error {
	data, err := json.Marshal(envelope{
		RoutingKey:  routingKey,
		Body:        body,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := c.client.LPush(ctx, c.queue, data).Err(); err != nil {
		return fmt.Errorf("redis lpush %q: %w", c.queue, err)
	}
	return nil
}

// Close implements Channel.
func (c *RedisChannel) Close() error {
	return c.client.Close()
}
