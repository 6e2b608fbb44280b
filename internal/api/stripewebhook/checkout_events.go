package stripewebhooks

import (
	"log"

	"streamdraw/internal/participation"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutSession routes every checkout lifecycle event through the same
// reconciliation; the event type is only logged because Verify re-reads the
// session from Stripe.
func (h *Handler) handleCheckoutSession(c *gin.Context, eventType string, session *stripe.CheckoutSession) participation.Outcome {
	if session.ClientReferenceID == "" {
		log.Printf("Stripe %s for session %s has no client_reference_id", eventType, session.ID)
		return participation.OutcomeRecordMissing
	}

	res := h.Engine.ResolveCallback(c.Request.Context(), participation.Callback{
		TxnRef:     session.ClientReferenceID,
		GatewayRef: session.ID,
	})
	log.Printf("Stripe %s txn=%s -> %s", eventType, session.ClientReferenceID, res.Outcome)
	return res.Outcome
}
