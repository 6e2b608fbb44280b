package billing

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

var ErrIllegalTransition = errors.New("illegal payment status transition")

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Transition allows only Pending -> Success and Pending -> Failure.
func Transition(from, to Status) (Status, error) {
	if from == StatusPending && to.Terminal() {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
