package repo

import (
	"context"
	"encoding/json"
	"time"

	"streamdraw/internal/domain/outbox"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentEvent struct {
	TxnRef   string `json:"txn_ref"`
	UserID   uint   `json:"user_id"`
	StreamID uint   `json:"stream_id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

type participantEvent struct {
	StreamID uint `json:"stream_id"`
	UserID   uint `json:"user_id"`
}

func enqueue(tx *gorm.DB, eventType, key string, data any) error {
	payload, err := json.Marshal(map[string]any{
		"type": eventType,
		"data": data,
	})
	if err != nil {
		return err
	}

	return tx.Create(&outbox.Message{
		ID:        uuid.NewString(),
		Type:      eventType,
		Key:       key,
		Payload:   string(payload),
		CreatedAt: time.Now(),
	}).Error
}

// OutboxRepo hands unprocessed messages to a publisher inside one transaction.
type OutboxRepo struct {
	db *gorm.DB
}

func NewOutboxRepo(db *gorm.DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

// ProcessBatch locks up to limit unprocessed messages, passes them to publish
// and marks them processed only if publish succeeds.
func (r *OutboxRepo) ProcessBatch(ctx context.Context, limit int, publish func(context.Context, []outbox.Message) error) (int, error) {
	processed := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("processed_at IS NULL").Order("created_at").Limit(limit)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var messages []outbox.Message
		if err := q.Find(&messages).Error; err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}

		if err := publish(ctx, messages); err != nil {
			return err
		}

		ids := make([]string, len(messages))
		for i, m := range messages {
			ids[i] = m.ID
		}
		if err := tx.Model(&outbox.Message{}).
			Where("id IN ?", ids).
			Update("processed_at", time.Now()).Error; err != nil {
			return err
		}
		processed = len(messages)
		return nil
	})
	return processed, err
}
