package streams

import (
	"time"

	"streamdraw/internal/domain/users"
)

type Stream struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Host        string `gorm:"not null" json:"host"`
	// Price is in the smallest currency unit.
	Price  int64  `gorm:"not null" json:"price"`
	Status Status `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	Participants []users.User `gorm:"many2many:stream_participants;" json:"participants,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// Participant is the join row between a stream and a paid user. The composite
// primary key is what keeps membership a set.
type Participant struct {
	StreamID  uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (Participant) TableName() string {
	return "stream_participants"
}
