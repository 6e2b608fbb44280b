package streams

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
)

var (
	ErrUnknownStatus     = errors.New("unknown stream status")
	ErrIllegalTransition = errors.New("illegal stream status transition")
)

// ParseStatus accepts the canonical names plus the legacy running/stopped labels.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "running":
		return StatusOpen, nil
	case "closed", "stopped":
		return StatusClosed, nil
	case "completed":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// AcceptsParticipants reports whether new users may pay to join.
func (s Status) AcceptsParticipants() bool {
	return s == StatusOpen
}

// Transition validates a status change. Open may move to Closed or Completed;
// both of those are terminal.
func Transition(from, to Status) (Status, error) {
	if from == StatusOpen && (to == StatusClosed || to == StatusCompleted) {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
