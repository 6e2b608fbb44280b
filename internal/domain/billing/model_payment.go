package billing

import "time"

const (
	ReasonVerificationFailed = "verification_failed"
	ReasonSuperseded         = "superseded"
)

// Payment is one attempt by a user to pay for a stream. It references the
// user and stream by id only.
type Payment struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TxnRef        string  `gorm:"column:txn_ref;not null;uniqueIndex:idx_payments_txn_ref" json:"txn_ref"`
	Gateway       string  `gorm:"type:varchar(20);not null" json:"gateway"`
	GatewayRef    *string `gorm:"column:gateway_ref;index" json:"gateway_ref,omitempty"`
	Status        Status  `gorm:"type:varchar(20);not null;index" json:"status"`
	FailureReason *string `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	Amount        int64   `gorm:"not null" json:"amount"`

	// idx_payments_one_success is partial: at most one success per user and stream.
	UserID   uint `gorm:"not null;index:idx_payments_user_stream;uniqueIndex:idx_payments_one_success,where:status = 'success'" json:"user_id"`
	StreamID uint `gorm:"not null;index:idx_payments_user_stream;uniqueIndex:idx_payments_one_success,where:status = 'success'" json:"stream_id"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
