package participation

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidState         = errors.New("stream no longer accepting participants")
	ErrConflict             = errors.New("already joined")
	ErrGateway              = errors.New("payment gateway error")
	ErrVerificationMismatch = errors.New("payment verification mismatch")
)

// Outcome is what a callback resolves to. Every callback ends in exactly one.
type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomeAlreadyProcessed   Outcome = "already_processed"
	OutcomeStreamClosed       Outcome = "stream_closed"
	OutcomeVerificationFailed Outcome = "verification_failed"
	OutcomeRecordMissing      Outcome = "record_missing"
)
