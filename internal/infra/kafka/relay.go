package kafka

import (
	"context"
	"log"
	"time"

	"streamdraw/internal/domain/outbox"

	kafkago "github.com/segmentio/kafka-go"
)

// Writer is the part of *kafka.Writer the relay needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Source hands out unprocessed outbox messages and marks them processed once
// publish returns nil.
type Source interface {
	ProcessBatch(ctx context.Context, limit int, publish func(context.Context, []outbox.Message) error) (int, error)
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

type Relay struct {
	source    Source
	writer    Writer
	interval  time.Duration
	batchSize int
}

func NewRelay(source Source, writer Writer, interval time.Duration, batchSize int) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{source: source, writer: writer, interval: interval, batchSize: batchSize}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.writer.Close()
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ outbox relay: %v", err)
			}
		}
	}
}

// Flush publishes batches until the outbox is drained or a publish fails.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.source.ProcessBatch(ctx, r.batchSize, r.publish)
		total += n
		if err != nil {
			return total, err
		}
		if n < r.batchSize {
			if total > 0 {
				log.Printf("✅ relayed %d outbox messages", total)
			}
			return total, nil
		}
	}
}

func (r *Relay) publish(ctx context.Context, msgs []outbox.Message) error {
	out := make([]kafkago.Message, len(msgs))
	for i, m := range msgs {
		out[i] = kafkago.Message{
			Key:   []byte(m.Key),
			Value: []byte(m.Payload),
			Time:  m.CreatedAt,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(m.Type)},
				{Key: "message_id", Value: []byte(m.ID)},
			},
		}
	}
	return r.writer.WriteMessages(ctx, out...)
}
