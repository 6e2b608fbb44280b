package participation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"
	"streamdraw/internal/infra/gateway"
	"streamdraw/internal/metrics"
)

// Store is the durable state the workflow reads and mutates. Lookups return
// (nil, nil) when the record does not exist.
type Store interface {
	FindStream(ctx context.Context, id uint) (*streams.Stream, error)
	FindUser(ctx context.Context, id uint) (*users.User, error)
	HasSuccessfulPayment(ctx context.Context, userID, streamID uint) (bool, error)
	CreatePayment(ctx context.Context, p *billing.Payment) error
	FindPaymentByTxnRef(ctx context.Context, ref string) (*billing.Payment, error)
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]billing.Payment, error)

	// CompletePayment moves a pending payment to a terminal status as a single
	// conditional update. It reports false when the payment already left
	// Pending, or, for Success, when another payment for the same user and
	// stream already succeeded.
	CompletePayment(ctx context.Context, p *billing.Payment, to billing.Status, reason string) (bool, error)

	// AddParticipant is an atomic set-add; it reports whether a row was inserted.
	AddParticipant(ctx context.Context, streamID, userID uint) (bool, error)

	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type Options struct {
	GatewayTimeout time.Duration
	Currency       string
	ReturnURL      string
	ContactEmail   string
}

type Engine struct {
	store   Store
	gateway gateway.Gateway
	opts    Options
	now     func() time.Time
}

func NewEngine(store Store, gw gateway.Gateway, opts Options) *Engine {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 10 * time.Second
	}
	return &Engine{store: store, gateway: gw, opts: opts, now: time.Now}
}

type JoinResult struct {
	Payment *billing.Payment
	Payload map[string]any
}

// RequestJoin checks eligibility, initiates a gateway transaction and records
// a Pending payment. Nothing is persisted when the gateway call fails.
func (e *Engine) RequestJoin(ctx context.Context, userID, streamID uint) (*JoinResult, error) {
	res, err := e.requestJoin(ctx, userID, streamID)
	metrics.JoinRequests.WithLabelValues(joinResultLabel(err)).Inc()
	return res, err
}

func (e *Engine) requestJoin(ctx context.Context, userID, streamID uint) (*JoinResult, error) {
	stream, err := e.store.FindStream(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("load stream %d: %w", streamID, err)
	}
	if stream == nil {
		return nil, fmt.Errorf("stream %d: %w", streamID, ErrNotFound)
	}
	if !stream.Status.AcceptsParticipants() {
		return nil, ErrInvalidState
	}

	joined, err := e.store.HasSuccessfulPayment(ctx, userID, streamID)
	if err != nil {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}
	if joined {
		return nil, ErrConflict
	}

	user, err := e.store.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	ref := NewTxnRef(e.now())

	gctx, cancel := context.WithTimeout(ctx, e.opts.GatewayTimeout)
	defer cancel()
	started, err := e.gateway.Initiate(gctx, gateway.Transaction{
		TxnRef:        ref,
		Amount:        stream.Price,
		Currency:      e.opts.Currency,
		ProductInfo:   stream.Title,
		CustomerName:  user.Name,
		CustomerPhone: user.Mobile,
		CustomerEmail: e.opts.ContactEmail,
		ReturnURL:     e.opts.ReturnURL,
	})
	if err != nil {
		log.Printf("❌ gateway %s initiate failed for txn %s: %v", e.gateway.Name(), ref, err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	payment := &billing.Payment{
		TxnRef:   ref,
		Gateway:  e.gateway.Name(),
		Status:   billing.StatusPending,
		Amount:   stream.Price,
		UserID:   userID,
		StreamID: streamID,
	}
	if started.GatewayRef != "" {
		gref := started.GatewayRef
		payment.GatewayRef = &gref
	}
	if err := e.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("record pending payment: %w", err)
	}

	return &JoinResult{Payment: payment, Payload: started.Payload}, nil
}

func joinResultLabel(err error) string {
	switch {
	case err == nil:
		return "initiated"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrGateway):
		return "gateway_error"
	default:
		return "error"
	}
}

// Callback identifies the transaction a gateway is reporting on. GatewayRef
// is optional; the stored one is used when empty.
type Callback struct {
	TxnRef     string
	GatewayRef string
}

type Resolution struct {
	Outcome Outcome
	Payment *billing.Payment
	// Err carries the underlying cause for logging; it is never surfaced to the gateway.
	Err error
}

// ResolveCallback reconciles a gateway callback into payment status and
// stream membership. It never returns an error: every path ends in an Outcome.
func (e *Engine) ResolveCallback(ctx context.Context, cb Callback) Resolution {
	res := e.resolve(ctx, cb)
	metrics.CallbackOutcomes.WithLabelValues(string(res.Outcome)).Inc()
	if res.Err != nil {
		log.Printf("callback %s resolved as %s: %v", cb.TxnRef, res.Outcome, res.Err)
	}
	return res
}

func (e *Engine) resolve(ctx context.Context, cb Callback) Resolution {
	if cb.TxnRef == "" {
		return Resolution{Outcome: OutcomeRecordMissing}
	}

	payment, err := e.store.FindPaymentByTxnRef(ctx, cb.TxnRef)
	if err != nil {
		return Resolution{Outcome: OutcomeRecordMissing, Err: err}
	}
	if payment == nil {
		return Resolution{Outcome: OutcomeRecordMissing}
	}
	if payment.Status.Terminal() {
		return Resolution{Outcome: OutcomeAlreadyProcessed, Payment: payment}
	}

	gatewayRef := cb.GatewayRef
	if gatewayRef == "" && payment.GatewayRef != nil {
		gatewayRef = *payment.GatewayRef
	}

	// the gateway may be slow or gone; the payment stays Pending for a later sweep
	v, err := e.gateway.Verify(ctx, payment.TxnRef, gatewayRef)
	if err != nil {
		return Resolution{Outcome: OutcomeVerificationFailed, Payment: payment, Err: fmt.Errorf("%w: %v", ErrGateway, err)}
	}

	if v.Status == gateway.StatusPending {
		// not a verdict yet: the payment stays Pending and is settled by a
		// later callback or by ReconcileStale (see reconcile.go)
		return Resolution{Outcome: OutcomeVerificationFailed, Payment: payment, Err: fmt.Errorf("txn %s still pending at gateway", payment.TxnRef)}
	}
	if !v.Succeeded() {
		return e.fail(ctx, payment, v)
	}
	return e.succeed(ctx, payment)
}

func (e *Engine) fail(ctx context.Context, payment *billing.Payment, v *gateway.Verification) Resolution {
	cause := fmt.Errorf("%w: status=%q capture=%q", ErrVerificationMismatch, v.Status, v.CaptureStatus)

	ok, err := e.store.CompletePayment(ctx, payment, billing.StatusFailure, billing.ReasonVerificationFailed)
	if err != nil {
		return Resolution{Outcome: OutcomeVerificationFailed, Payment: payment, Err: errors.Join(cause, err)}
	}
	if !ok {
		return Resolution{Outcome: OutcomeAlreadyProcessed, Payment: payment}
	}
	return Resolution{Outcome: OutcomeVerificationFailed, Payment: payment, Err: cause}
}

func (e *Engine) succeed(ctx context.Context, payment *billing.Payment) Resolution {
	var outcome Outcome
	var note error

	err := e.store.Transaction(ctx, func(tx Store) error {
		ok, err := tx.CompletePayment(ctx, payment, billing.StatusSuccess, "")
		if err != nil {
			return err
		}
		if !ok {
			outcome = OutcomeAlreadyProcessed
			current, err := tx.FindPaymentByTxnRef(ctx, payment.TxnRef)
			if err != nil {
				return err
			}
			if current == nil || current.Status != billing.StatusPending {
				return nil
			}
			// a sibling attempt already succeeded; this capture does not count
			if _, err := tx.CompletePayment(ctx, current, billing.StatusFailure, billing.ReasonSuperseded); err != nil {
				return err
			}
			*payment = *current
			note = fmt.Errorf("txn %s captured after user %d already joined stream %d; refund required",
				payment.TxnRef, payment.UserID, payment.StreamID)
			return nil
		}

		stream, err := tx.FindStream(ctx, payment.StreamID)
		if err != nil {
			return err
		}
		if stream == nil || !stream.Status.AcceptsParticipants() {
			outcome = OutcomeStreamClosed
			note = fmt.Errorf("txn %s paid but stream %d is not open; contact support", payment.TxnRef, payment.StreamID)
			return nil
		}

		if _, err := tx.AddParticipant(ctx, payment.StreamID, payment.UserID); err != nil {
			return err
		}
		outcome = OutcomeSuccess
		return nil
	})
	if err != nil {
		// rolled back: the payment is still Pending and a later callback or sweep retries
		payment.Status = billing.StatusPending
		return Resolution{Outcome: OutcomeVerificationFailed, Payment: payment, Err: err}
	}
	return Resolution{Outcome: outcome, Payment: payment, Err: note}
}
