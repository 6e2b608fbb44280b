package stripewebhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streamdraw/internal/domain/streams"
	"streamdraw/internal/infra/gateway"
	"streamdraw/internal/participation"
	"streamdraw/internal/repo"
	"streamdraw/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75/webhook"
)

const secret = "whsec_test"

func eventBody(t *testing.T, eventType string, session map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-10-16",
		"data":        map[string]any{"object": session},
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func send(r http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signed(body []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestStripeWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	var verifiedRef string
	gw := &testutil.FakeGateway{
		VerifyFunc: func(_ context.Context, _ string, gatewayRef string) (*gateway.Verification, error) {
			verifiedRef = gatewayRef
			return &gateway.Verification{Status: gateway.StatusSuccess, CaptureStatus: gateway.CaptureCaptured}, nil
		},
	}
	engine := participation.NewEngine(repo.NewParticipationRepo(db), gw, participation.Options{})
	u := testutil.CreateUser(t, db, "asha", "9876543210")
	s := testutil.CreateStream(t, db, "Friday Live", 500, streams.StatusOpen)

	joined, err := engine.RequestJoin(context.Background(), u.ID, s.ID)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.POST("/webhook/stripe", NewHandler(engine, secret).StripeWebhook)

	body := eventBody(t, "checkout.session.completed", map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"client_reference_id": joined.Payment.TxnRef,
	})

	if w := send(r, body, "t=1,v1=bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad signature: status = %d", w.Code)
	}
	if ids := testutil.ParticipantIDs(t, db, s.ID); len(ids) != 0 {
		t.Fatal("unsigned event changed state")
	}

	w := send(r, body, signed(body))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), string(participation.OutcomeSuccess)) {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	if verifiedRef != "cs_test_1" {
		t.Errorf("verified session = %q", verifiedRef)
	}
	if ids := testutil.ParticipantIDs(t, db, s.ID); len(ids) != 1 {
		t.Errorf("participants = %v", ids)
	}

	// redelivery is acknowledged without a second membership
	w = send(r, body, signed(body))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), string(participation.OutcomeAlreadyProcessed)) {
		t.Errorf("redelivery: %d %s", w.Code, w.Body)
	}
}

func TestStripeWebhook_AcknowledgesOtherEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	engine := participation.NewEngine(repo.NewParticipationRepo(db), &testutil.FakeGateway{}, participation.Options{})

	r := gin.New()
	r.POST("/webhook/stripe", NewHandler(engine, secret).StripeWebhook)

	body := eventBody(t, "customer.created", map[string]any{"id": "cus_1", "object": "customer"})
	if w := send(r, body, signed(body)); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ignored") {
		t.Errorf("%d %s", w.Code, w.Body)
	}

	body = eventBody(t, "checkout.session.expired", map[string]any{"id": "cs_2", "object": "checkout.session"})
	if w := send(r, body, signed(body)); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "record_missing") {
		t.Errorf("%d %s", w.Code, w.Body)
	}
}

func TestStripeWebhook_RequiresSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/stripe", (&Handler{}).StripeWebhook)
	if w := send(r, []byte(`{}`), ""); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}
