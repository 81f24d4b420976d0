package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventBus publishes a payload to real-time subscribers. Publish must fail
// fast; it runs inline with a writer's transaction.
type EventBus interface {
	Publish(ctx context.Context, p Payload) error
}

// RedisEventBus implements EventBus over redis pub/sub. Delivery is
// fire-and-forget: subscribers that are not listening miss the event.
type RedisEventBus struct {
	client  *redis.Client
	channel string
}

func NewRedisEventBus(client *redis.Client, channel string) *RedisEventBus {
	if channel == "" {
		channel = "safeindex:events"
	}
	return &RedisEventBus{client: client, channel: channel}
}

func (b *RedisEventBus) Publish(ctx context.Context, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event for %s: %w", p.Address, err)
	}
	return nil
}

var _ EventBus = (*RedisEventBus)(nil)
