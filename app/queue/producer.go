package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type EventProducer struct {
	client *redis.Client
}

// NewEventProducer constructs a Redis stream producer.
func NewEventProducer(client *redis.Client) *EventProducer {
	return &EventProducer{client: client}
}

// Publish appends a campaign event to the stream.
func (p *EventProducer) Publish(ctx context.Context, event CampaignEvent) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: event.values(),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd to %s: %w", StreamName, err)
	}
	return nil
}
