package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"streamdraw/database"
	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"
	"streamdraw/internal/infra/gateway"
	"streamdraw/internal/participation"
	"streamdraw/internal/repo"
	"streamdraw/internal/testutil"

	"github.com/gin-gonic/gin"
)

type env struct {
	router *gin.Engine
	gw     *testutil.FakeGateway
	user   *users.User
	stream *streams.Stream
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	database.DB = db

	gw := &testutil.FakeGateway{}
	engine := participation.NewEngine(repo.NewParticipationRepo(db), gw, participation.Options{})
	h := NewHandler(engine, "help@example.com")

	e := &env{
		gw:     gw,
		user:   testutil.CreateUser(t, db, "asha", "9876543210"),
		stream: testutil.CreateStream(t, db, "Friday Live", 500, streams.StatusOpen),
	}

	r := gin.New()
	r.SetHTMLTemplate(OutcomeTemplate())
	asUser := func(c *gin.Context) { c.Set("user_id", e.user.ID) }
	r.POST("/api/payment/create", asUser, h.CreatePayment)
	r.GET("/api/payment/create", asUser, h.CreatePayment)
	r.GET("/api/payments", asUser, GetPaymentHistory)
	r.POST("/api/payment/give-access", h.GiveAccess)
	r.GET("/api/payment/give-access", h.GiveAccess)
	e.router = r
	return e
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) join(t *testing.T, streamID uint) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader(`{"streamId":` + jsonNumber(streamID) + `}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/create", body)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func jsonNumber(n uint) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func (e *env) callback(txnid string) *httptest.ResponseRecorder {
	form := url.Values{"txnid": {txnid}, "status": {"success"}}
	req := httptest.NewRequest(http.MethodPost, "/api/payment/give-access", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

type createResponse struct {
	Success bool           `json:"success"`
	TxnID   string         `json:"txnid"`
	Res     map[string]any `json:"res"`
	Error   string         `json:"error"`
}

func TestCreatePayment_RelaysPayload(t *testing.T) {
	e := newEnv(t)

	w := e.join(t, e.stream.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var resp createResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.TxnID == "" || resp.Res["txnid"] != resp.TxnID {
		t.Errorf("response = %+v", resp)
	}

	// legacy query form
	w = e.do(httptest.NewRequest(http.MethodGet, "/api/payment/create?streamId="+jsonNumber(e.stream.ID), nil))
	if w.Code != http.StatusOK {
		t.Errorf("query form: status = %d", w.Code)
	}
}

func TestCreatePayment_ErrorStatuses(t *testing.T) {
	e := newEnv(t)

	if w := e.join(t, 0); w.Code != http.StatusBadRequest {
		t.Errorf("missing stream id: %d", w.Code)
	}
	if w := e.join(t, e.stream.ID+99); w.Code != http.StatusNotFound {
		t.Errorf("unknown stream: %d", w.Code)
	}

	closed := testutil.CreateStream(t, database.DB, "Done", 100, streams.StatusClosed)
	if w := e.join(t, closed.ID); w.Code != http.StatusBadRequest {
		t.Errorf("closed stream: %d", w.Code)
	}

	e.gw.InitiateFunc = func(context.Context, gateway.Transaction) (*gateway.Initiation, error) {
		return nil, errors.New("down")
	}
	if w := e.join(t, e.stream.ID); w.Code != http.StatusBadGateway {
		t.Errorf("gateway down: %d", w.Code)
	}
	e.gw.InitiateFunc = nil

	var resp createResponse
	json.Unmarshal(e.join(t, e.stream.ID).Body.Bytes(), &resp)
	if w := e.callback(resp.TxnID); w.Code != http.StatusFound {
		t.Fatalf("callback: %d", w.Code)
	}
	if w := e.join(t, e.stream.ID); w.Code != http.StatusConflict {
		t.Errorf("already joined: %d", w.Code)
	}
}

func TestGiveAccess_SuccessRedirects(t *testing.T) {
	e := newEnv(t)
	var resp createResponse
	json.Unmarshal(e.join(t, e.stream.ID).Body.Bytes(), &resp)

	w := e.callback(resp.TxnID)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}

	// gateways deliver twice
	w = e.callback(resp.TxnID)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "already processed") {
		t.Errorf("repeat: %d %s", w.Code, w.Body)
	}
	if ids := testutil.ParticipantIDs(t, database.DB, e.stream.ID); len(ids) != 1 {
		t.Errorf("participants = %v", ids)
	}
}

func TestGiveAccess_RendersOutcomes(t *testing.T) {
	t.Run("missing txnid", func(t *testing.T) {
		e := newEnv(t)
		w := e.callback("")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Transaction ID not found") {
			t.Errorf("%d %s", w.Code, w.Body)
		}
	})

	t.Run("unknown txnid", func(t *testing.T) {
		e := newEnv(t)
		w := e.callback("TXN-unknown")
		if !strings.Contains(w.Body.String(), "No local payment record found") {
			t.Errorf("%s", w.Body)
		}
		if !strings.Contains(w.Body.String(), `content="20;url=/"`) {
			t.Error("page does not refresh back to the stream")
		}
	})

	t.Run("stream closed", func(t *testing.T) {
		e := newEnv(t)
		var resp createResponse
		json.Unmarshal(e.join(t, e.stream.ID).Body.Bytes(), &resp)
		database.DB.Model(&streams.Stream{}).Where("id = ?", e.stream.ID).Update("status", streams.StatusClosed)

		w := e.callback(resp.TxnID)
		if !strings.Contains(w.Body.String(), "help@example.com") {
			t.Errorf("support contact missing: %s", w.Body)
		}
	})

	t.Run("not captured", func(t *testing.T) {
		e := newEnv(t)
		e.gw.VerifyFunc = func(context.Context, string, string) (*gateway.Verification, error) {
			return &gateway.Verification{Status: gateway.StatusSuccess, CaptureStatus: "auth"}, nil
		}
		var resp createResponse
		json.Unmarshal(e.join(t, e.stream.ID).Body.Bytes(), &resp)

		w := e.callback(resp.TxnID)
		if !strings.Contains(w.Body.String(), "verification failed") {
			t.Errorf("%s", w.Body)
		}
	})

	t.Run("query txnid", func(t *testing.T) {
		e := newEnv(t)
		var resp createResponse
		json.Unmarshal(e.join(t, e.stream.ID).Body.Bytes(), &resp)
		w := e.do(httptest.NewRequest(http.MethodGet, "/api/payment/give-access?txnid="+resp.TxnID, nil))
		if w.Code != http.StatusFound {
			t.Errorf("status = %d", w.Code)
		}
	})
}

func TestGetPaymentHistory(t *testing.T) {
	e := newEnv(t)
	e.join(t, e.stream.ID)
	w := e.join(t, e.stream.ID)
	var second createResponse
	json.Unmarshal(w.Body.Bytes(), &second)
	e.callback(second.TxnID)

	var body struct {
		Payments []PaymentHistoryItem `json:"payments"`
	}
	w = e.do(httptest.NewRequest(http.MethodGet, "/api/payments", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Payments) != 2 {
		t.Fatalf("payments = %+v", body.Payments)
	}
	if body.Payments[0].TxnID != second.TxnID || body.Payments[0].Status != billing.StatusSuccess {
		t.Errorf("newest payment = %+v", body.Payments[0])
	}
	if body.Payments[0].StreamTitle != e.stream.Title {
		t.Errorf("stream title = %q", body.Payments[0].StreamTitle)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/payments?status=pending", nil))
	body.Payments = nil
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Payments) != 1 || body.Payments[0].Status != billing.StatusPending {
		t.Errorf("pending filter = %+v", body.Payments)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/payments?status=refunded", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: %d", w.Code)
	}
}
