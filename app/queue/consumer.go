package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EventHandler processes one event. A returned error leaves the message pending.
type EventHandler func(ctx context.Context, event CampaignEvent) error

type EventConsumer struct {
	client       *redis.Client
	handler      EventHandler
	consumerName string
	log          logrus.FieldLogger
	block        time.Duration
}

// NewEventConsumer constructs a Redis stream consumer.
func NewEventConsumer(client *redis.Client, handler EventHandler, consumerName string, log logrus.FieldLogger) *EventConsumer {
	return &EventConsumer{
		client:       client,
		handler:      handler,
		consumerName: consumerName,
		log:          log.WithField("consumer", consumerName),
		block:        5 * time.Second,
	}
}

// Run starts the consumer loop and blocks until context cancellation.
func (c *EventConsumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.log.WithField("stream", StreamName).Info("Consumer started")

	// First drain pending messages, then switch to reading new ones.
	startID := "0"
	for {
		select {
		case <-ctx.Done():
			c.log.Info("Consumer shutting down")
			return nil
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroup,
			Consumer: c.consumerName,
			Streams:  []string{StreamName, startID},
			Count:    10,
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				if startID == "0" {
					startID = ">"
				}
				continue
			}
			if ctx.Err() != nil {
				c.log.Info("Consumer shutting down")
				return nil
			}
			c.log.WithError(err).Warn("XReadGroup failed")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			if len(stream.Messages) == 0 && startID == "0" {
				startID = ">"
				continue
			}
			for _, msg := range stream.Messages {
				c.processMessage(ctx, msg)
			}
		}
	}
}

// processMessage handles a single message and acks on success.
func (c *EventConsumer) processMessage(ctx context.Context, msg redis.XMessage) {
	event := parseCampaignEvent(msg.Values)
	log := c.log.WithFields(logrus.Fields{"message_id": msg.ID, "run_id": event.RunID, "type": event.Type})

	handleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := c.handler(handleCtx, event); err != nil {
		log.WithError(err).Warn("Event handler failed, message stays pending")
		return
	}

	if err := c.client.XAck(ctx, StreamName, ConsumerGroup, msg.ID).Err(); err != nil {
		log.WithError(err).Warn("XAck failed")
	}
}

// ensureGroup creates the stream and consumer group if missing.
func (c *EventConsumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, StreamName, ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
