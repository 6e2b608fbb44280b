package gateway

import "context"

// Normalized verification values. Adapters map their provider-specific
// fields onto these.
const (
	StatusSuccess   = "success"
	StatusPending   = "pending"
	StatusFailure   = "failure"
	CaptureCaptured = "captured"
)

// Transaction describes one payment attempt handed to a provider.
type Transaction struct {
	TxnRef      string
	Amount      int64 // smallest currency unit
	Currency    string
	ProductInfo string

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	// ReturnURL receives the browser (and, for form-post providers, the
	// callback) once the user leaves the provider's page.
	ReturnURL string
}

type Initiation struct {
	// GatewayRef is the provider-side id, empty when the provider keys on TxnRef.
	GatewayRef string
	// Payload is relayed to the client unmodified.
	Payload map[string]any
}

type Verification struct {
	Status        string
	CaptureStatus string
}

// Succeeded requires both fields to agree; neither is trusted alone.
func (v Verification) Succeeded() bool {
	return v.Status == StatusSuccess && v.CaptureStatus == CaptureCaptured
}

type Gateway interface {
	Name() string
	Initiate(ctx context.Context, txn Transaction) (*Initiation, error)
	Verify(ctx context.Context, txnRef, gatewayRef string) (*Verification, error)
}
