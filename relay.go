package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"streamdraw/config"
	"streamdraw/database"
	"streamdraw/internal/infra/kafka"
	"streamdraw/internal/repo"

	"github.com/spf13/cobra"
)

var (
	relayInterval  time.Duration
	relayBatchSize int
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Publish outbox events to Kafka until interrupted",
	RunE:  runRelay,
}

func init() {
	relayCmd.Flags().DurationVar(&relayInterval, "interval", 2*time.Second, "poll interval")
	relayCmd.Flags().IntVar(&relayBatchSize, "batch", 100, "messages per transaction")
}

func runRelay(cmd *cobra.Command, args []string) error {
	if len(config.KAFKA_BROKERS) == 0 {
		return errors.New("KAFKA_BROKERS is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()

	relay := kafka.NewRelay(
		repo.NewOutboxRepo(database.DB),
		kafka.NewWriter(config.KAFKA_BROKERS, config.KAFKA_TOPIC),
		relayInterval,
		relayBatchSize,
	)

	log.Printf("Relaying outbox to %s on %v", config.KAFKA_TOPIC, config.KAFKA_BROKERS)
	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
