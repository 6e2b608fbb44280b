package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/outbox"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"
	"streamdraw/internal/participation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipationRepo is the gorm-backed participation.Store.
type ParticipationRepo struct {
	db *gorm.DB
}

func NewParticipationRepo(db *gorm.DB) *ParticipationRepo {
	return &ParticipationRepo{db: db}
}

var _ participation.Store = (*ParticipationRepo)(nil)

func (r *ParticipationRepo) Transaction(ctx context.Context, fn func(tx participation.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ParticipationRepo{db: tx})
	})
}

func (r *ParticipationRepo) FindStream(ctx context.Context, id uint) (*streams.Stream, error) {
	var st streams.Stream
	err := r.db.WithContext(ctx).First(&st, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *ParticipationRepo) FindUser(ctx context.Context, id uint) (*users.User, error) {
	var u users.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ParticipationRepo) HasSuccessfulPayment(ctx context.Context, userID, streamID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Where("user_id = ? AND stream_id = ? AND status = ?", userID, streamID, billing.StatusSuccess).
		Count(&count).Error
	return count > 0, err
}

func (r *ParticipationRepo) CreatePayment(ctx context.Context, p *billing.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ParticipationRepo) FindPaymentByTxnRef(ctx context.Context, ref string) (*billing.Payment, error) {
	var p billing.Payment
	err := r.db.WithContext(ctx).Where("txn_ref = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipationRepo) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]billing.Payment, error) {
	var payments []billing.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", billing.StatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *ParticipationRepo) CompletePayment(ctx context.Context, p *billing.Payment, to billing.Status, reason string) (bool, error) {
	if _, err := billing.Transition(p.Status, to); err != nil {
		return false, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      to,
		"resolved_at": now,
		"updated_at":  now,
	}
	if reason != "" {
		updates["failure_reason"] = reason
	}

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&billing.Payment{}).
			Where("id = ? AND status = ?", p.ID, billing.StatusPending)
		if to == billing.StatusSuccess {
			q = q.Where("NOT EXISTS (SELECT 1 FROM payments s WHERE s.user_id = ? AND s.stream_id = ? AND s.status = ?)",
				p.UserID, p.StreamID, billing.StatusSuccess)
		}

		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return nil
		}
		applied = true

		event := outbox.EventPaymentFailed
		if to == billing.StatusSuccess {
			event = outbox.EventPaymentSucceeded
		}
		return enqueue(tx, event, fmt.Sprint(p.StreamID), paymentEvent{
			TxnRef:   p.TxnRef,
			UserID:   p.UserID,
			StreamID: p.StreamID,
			Amount:   p.Amount,
			Status:   string(to),
			Reason:   reason,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the race on idx_payments_one_success
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if applied {
		p.Status = to
		p.ResolvedAt = &now
		p.UpdatedAt = now
		if reason != "" {
			p.FailureReason = &reason
		}
	}
	return applied, nil
}

func (r *ParticipationRepo) AddParticipant(ctx context.Context, streamID, userID uint) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&streams.Participant{StreamID: streamID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		added = true
		return enqueue(tx, outbox.EventParticipantAdded, fmt.Sprint(streamID), participantEvent{
			StreamID: streamID,
			UserID:   userID,
		})
	})
	return added, err
}
