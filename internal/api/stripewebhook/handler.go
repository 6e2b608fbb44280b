package stripewebhooks

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"streamdraw/internal/participation"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

type Handler struct {
	Engine         *participation.Engine
	EndpointSecret string
}

func NewHandler(engine *participation.Engine, endpointSecret string) *Handler {
	return &Handler{Engine: engine, EndpointSecret: endpointSecret}
}

// StripeWebhook verifies the signature, then always acknowledges: outcomes
// are recorded by the workflow and a failed verification is left Pending for
// the reconcile sweep.
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.EndpointSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.EndpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Println("❌ Stripe signature verification failed:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.Printf("❌ Stripe %s: failed to parse session: %v", event.Type, err)
			c.JSON(http.StatusOK, gin.H{"status": "unparseable"})
			return
		}
		outcome := h.handleCheckoutSession(c, string(event.Type), &session)
		c.JSON(http.StatusOK, gin.H{"status": "received", "outcome": outcome})

	default:
		// acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
