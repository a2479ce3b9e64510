package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher forwards domain events to a Redis pub/sub channel so other
// services can follow sales activity.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher builds a publisher. A nil client yields a publisher that drops events.
func NewRedisPublisher(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Handle is an EventHandler that publishes the JSON-encoded event.
func (p *RedisPublisher) Handle(ctx context.Context, event Event) error {
	if p == nil || p.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.logger.Warn("publish event failed",
			zap.String("channel", p.channel),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
