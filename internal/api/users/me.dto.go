package users

import "time"

type UserDTO struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Mobile   string    `json:"mobile"`
	UPI      string    `json:"upi"`
	JoinedAt time.Time `json:"joined_at"`
}

type MeResponse struct {
	User UserDTO `json:"user"`
	// JoinedStreams are the streams the user is a participant of.
	JoinedStreams   []uint `json:"joined_streams"`
	PendingPayments int64  `json:"pending_payments"`
}
