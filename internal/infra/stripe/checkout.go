package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"streamdraw/internal/infra/gateway"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Checkout runs payments through hosted Checkout Sessions. The session id is
// the gateway ref; our txn ref travels as client_reference_id.
type Checkout struct {
	api *client.API
}

var _ gateway.Gateway = (*Checkout)(nil)

// New builds a Checkout against the live Stripe API. backends may be nil.
func New(secretKey string, backends *stripe.Backends) *Checkout {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Checkout{api: api}
}

func (s *Checkout) Name() string { return "stripe" }

func (s *Checkout) Initiate(ctx context.Context, txn gateway.Transaction) (*gateway.Initiation, error) {
	if txn.TxnRef == "" {
		return nil, errors.New("stripe: missing txn ref")
	}
	if txn.Amount <= 0 {
		return nil, fmt.Errorf("stripe: amount must be positive, got %d", txn.Amount)
	}

	name := txn.ProductInfo
	if name == "" {
		name = "Stream access"
	}
	currency := strings.ToLower(txn.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(withTxnID(txn.ReturnURL, txn.TxnRef)),
		CancelURL:         stripe.String(withTxnID(txn.ReturnURL, txn.TxnRef)),
		ClientReferenceID: stripe.String(txn.TxnRef),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(txn.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
			},
		},
	}
	if txn.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(txn.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("txn_ref", txn.TxnRef)
	params.AddMetadata("phone", txn.CustomerPhone)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	return &gateway.Initiation{
		GatewayRef: sess.ID,
		Payload: map[string]any{
			"url":        sess.URL,
			"session_id": sess.ID,
		},
	}, nil
}

// Verify re-reads the session from Stripe; webhook bodies are never trusted
// for the status itself.
func (s *Checkout) Verify(ctx context.Context, txnRef, gatewayRef string) (*gateway.Verification, error) {
	if gatewayRef == "" {
		return nil, fmt.Errorf("stripe: no checkout session recorded for %s", txnRef)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	sess, err := s.api.CheckoutSessions.Get(gatewayRef, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: fetch checkout session: %w", err)
	}
	if sess.ClientReferenceID != txnRef {
		return nil, fmt.Errorf("stripe: session %s belongs to %q, not %q", sess.ID, sess.ClientReferenceID, txnRef)
	}

	v := NormalizeSession(sess)
	return &v, nil
}

func withTxnID(base, ref string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "txnid=" + ref
}
