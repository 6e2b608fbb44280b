package stripe

import (
	"strings"

	"streamdraw/internal/infra/gateway"

	"github.com/stripe/stripe-go/v75"
)

// NormalizeSession maps a Checkout Session onto the gateway's two verification
// fields. A completed session whose async payment has not settled stays pending.
func NormalizeSession(s *stripe.CheckoutSession) gateway.Verification {
	if s == nil {
		return gateway.Verification{Status: gateway.StatusFailure}
	}

	capture := strings.TrimSpace(string(s.PaymentStatus))
	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		capture = gateway.CaptureCaptured
	}

	switch s.Status {
	case stripe.CheckoutSessionStatusComplete:
		if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			return gateway.Verification{Status: gateway.StatusSuccess, CaptureStatus: capture}
		}
		if paymentIntentFailed(s.PaymentIntent) {
			return gateway.Verification{Status: gateway.StatusFailure, CaptureStatus: capture}
		}
		return gateway.Verification{Status: gateway.StatusPending, CaptureStatus: capture}
	case stripe.CheckoutSessionStatusOpen:
		return gateway.Verification{Status: gateway.StatusPending, CaptureStatus: capture}
	default:
		// expired, or anything Stripe adds later
		return gateway.Verification{Status: gateway.StatusFailure, CaptureStatus: capture}
	}
}

func paymentIntentFailed(pi *stripe.PaymentIntent) bool {
	if pi == nil {
		return false
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusCanceled, stripe.PaymentIntentStatusRequiresPaymentMethod:
		return true
	default:
		return false
	}
}
