package payu

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamdraw/internal/domain/billing"
	"streamdraw/internal/infra/gateway"
)

const (
	testPaymentURL = "https://test.payu.in/_payment"
	prodPaymentURL = "https://secure.payu.in/_payment"
	testInfoURL    = "https://test.info.payu.in/merchant/postservice.php?form=2"
	prodInfoURL    = "https://info.payu.in/merchant/postservice.php?form=2"
)

type Config struct {
	Key  string
	Salt string
	// Env is "production" for live endpoints, anything else hits the sandbox.
	Env string

	// Overrides for tests.
	PaymentURL string
	InfoURL    string
	HTTPClient *http.Client
}

// Client speaks PayU's hosted checkout and verify_payment APIs.
type Client struct {
	key, salt  string
	paymentURL string
	infoURL    string
	http       *http.Client
}

var _ gateway.Gateway = (*Client)(nil)

func New(cfg Config) *Client {
	c := &Client{
		key:        cfg.Key,
		salt:       cfg.Salt,
		paymentURL: testPaymentURL,
		infoURL:    testInfoURL,
		http:       cfg.HTTPClient,
	}
	if strings.EqualFold(cfg.Env, "production") || strings.EqualFold(cfg.Env, "prod") {
		c.paymentURL = prodPaymentURL
		c.infoURL = prodInfoURL
	}
	if cfg.PaymentURL != "" {
		c.paymentURL = cfg.PaymentURL
	}
	if cfg.InfoURL != "" {
		c.infoURL = cfg.InfoURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

func (c *Client) Name() string { return "payu" }

// Initiate builds the signed form the browser posts to PayU. No request is
// made here; PayU keys everything on txnid.
func (c *Client) Initiate(ctx context.Context, txn gateway.Transaction) (*gateway.Initiation, error) {
	if txn.TxnRef == "" {
		return nil, fmt.Errorf("payu: missing txnid")
	}
	if txn.Amount <= 0 {
		return nil, fmt.Errorf("payu: amount must be positive, got %d", txn.Amount)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	amount := billing.FormatMinor(txn.Amount)
	productInfo := txn.ProductInfo
	if productInfo == "" {
		productInfo = "stream"
	}

	fields := map[string]any{
		"key":         c.key,
		"txnid":       txn.TxnRef,
		"amount":      amount,
		"productinfo": productInfo,
		"firstname":   txn.CustomerName,
		"email":       txn.CustomerEmail,
		"phone":       txn.CustomerPhone,
		"surl":        txn.ReturnURL,
		"furl":        txn.ReturnURL,
		"hash":        c.paymentHash(txn.TxnRef, amount, productInfo, txn.CustomerName, txn.CustomerEmail),
	}

	return &gateway.Initiation{
		Payload: map[string]any{
			"action": c.paymentURL,
			"method": http.MethodPost,
			"params": fields,
		},
	}, nil
}

// sha512(key|txnid|amount|productinfo|firstname|email|udf1..udf5||||||salt)
func (c *Client) paymentHash(txnid, amount, productInfo, firstname, email string) string {
	parts := []string{c.key, txnid, amount, productInfo, firstname, email}
	parts = append(parts, make([]string, 10)...)
	parts = append(parts, c.salt)
	return sha512Hex(strings.Join(parts, "|"))
}

type verifyResponse struct {
	Status             int                          `json:"status"`
	Msg                string                       `json:"msg"`
	TransactionDetails map[string]transactionDetail `json:"transaction_details"`
}

type transactionDetail struct {
	TxnID          string `json:"txnid"`
	Status         string `json:"status"`
	UnmappedStatus string `json:"unmappedstatus"`
	Amount         string `json:"amt"`
}

// Verify asks PayU for the authoritative state of txnRef. gatewayRef is unused.
func (c *Client) Verify(ctx context.Context, txnRef, _ string) (*gateway.Verification, error) {
	const command = "verify_payment"

	form := url.Values{}
	form.Set("key", c.key)
	form.Set("command", command)
	form.Set("var1", txnRef)
	form.Set("hash", sha512Hex(strings.Join([]string{c.key, command, txnRef, c.salt}, "|")))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.infoURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payu verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payu verify: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payu verify: http %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("payu verify: decode: %w", err)
	}

	detail, ok := out.TransactionDetails[txnRef]
	if !ok {
		return nil, fmt.Errorf("payu verify: transaction %s not found (%s)", txnRef, out.Msg)
	}

	return &gateway.Verification{
		Status:        normalizeStatus(detail.Status),
		CaptureStatus: strings.ToLower(strings.TrimSpace(detail.UnmappedStatus)),
	}, nil
}

// PayU reports "success", "failure" or "pending". "Not Found" (an abandoned
// checkout) counts as failure.
func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return gateway.StatusSuccess
	case "pending", "in progress", "initiated":
		return gateway.StatusPending
	default:
		return gateway.StatusFailure
	}
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
