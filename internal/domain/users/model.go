package users

import "time"

// User is a registered participant. Mobile is the natural key used to make
// registration idempotent.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Mobile    string    `gorm:"not null;uniqueIndex:idx_users_mobile" json:"mobile"`
	UPI       string    `gorm:"column:upi;not null" json:"upi"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"-"`
}
