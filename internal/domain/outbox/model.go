package outbox

import "time"

const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventParticipantAdded = "participant.added"
)

// Message is written in the same transaction as the state change it
// describes and published later by the relay.
type Message struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Type        string     `gorm:"type:varchar(40);not null"`
	Key         string     `gorm:"column:msg_key;type:varchar(64);not null"`
	Payload     string     `gorm:"type:text;not null"`
	CreatedAt   time.Time  `gorm:"index"`
	ProcessedAt *time.Time `gorm:"index"`
}

func (Message) TableName() string {
	return "outbox_messages"
}
