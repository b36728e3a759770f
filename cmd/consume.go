package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vibast-solutions/ms-go-campaigns/app/logger"
	"github.com/vibast-solutions/ms-go-campaigns/app/queue"
	"github.com/vibast-solutions/ms-go-campaigns/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume queued messages",
	Long:  "Consume queued messages from Redis streams.",
}

// init registers consume subcommands.
func init() {
	consumeCmd.AddCommand(consumeEventsCmd)
	rootCmd.AddCommand(consumeCmd)
}

var consumeEventsCmd = &cobra.Command{
	Use:   "events [consumer_name]",
	Short: "Start the campaign event consumer",
	Long:  "Start a worker that reads campaign lifecycle and delivery events from the Redis stream and writes them to the log.",
	Args:  cobra.ExactArgs(1),
	Run:   runConsumeEvents,
}

// runConsumeEvents starts the campaign event consumer worker.
func runConsumeEvents(_ *cobra.Command, args []string) {
	consumerName := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		logr.WithError(err).Fatal("Failed to connect to Redis")
	}
	if rdb == nil {
		logr.Fatal("REDIS_ADDR is required to consume campaign events")
	}
	defer rdb.Close()

	consumer := queue.NewEventConsumer(rdb, logEvent(logr), consumerName, logr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logr.Info("Received shutdown signal, stopping consumer...")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		logr.WithError(err).Fatal("Consumer error")
	}

	logr.Info("Consumer stopped")
}

// logEvent returns a handler that records each event as a structured log line.
func logEvent(logr logrus.FieldLogger) queue.EventHandler {
	return func(_ context.Context, event queue.CampaignEvent) error {
		entry := logr.WithFields(logrus.Fields{
			"run_id":    event.RunID,
			"type":      event.Type,
			"status":    event.Status,
			"remaining": event.Remaining,
			"total":     event.Total,
		})
		if event.Recipient != "" {
			entry = entry.WithFields(logrus.Fields{
				"recipient": event.Recipient,
				"delivered": event.Delivered,
				"attempts":  event.Attempts,
			})
		}
		if event.Error != "" {
			entry = entry.WithField("error", event.Error)
		}
		entry.Info("Campaign event")
		return nil
	}
}
