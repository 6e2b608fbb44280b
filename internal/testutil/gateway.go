package testutil

import (
	"context"
	"sync"

	"streamdraw/internal/infra/gateway"
)

// FakeGateway records calls and delegates to the optional funcs. Without
// overrides Initiate echoes the txn ref and Verify reports a captured success.
type FakeGateway struct {
	InitiateFunc func(ctx context.Context, txn gateway.Transaction) (*gateway.Initiation, error)
	VerifyFunc   func(ctx context.Context, txnRef, gatewayRef string) (*gateway.Verification, error)

	mu        sync.Mutex
	Initiated []gateway.Transaction
	Verified  []string
}

func (f *FakeGateway) Name() string { return "fake" }

func (f *FakeGateway) Initiate(ctx context.Context, txn gateway.Transaction) (*gateway.Initiation, error) {
	f.mu.Lock()
	f.Initiated = append(f.Initiated, txn)
	f.mu.Unlock()

	if f.InitiateFunc != nil {
		return f.InitiateFunc(ctx, txn)
	}
	return &gateway.Initiation{
		GatewayRef: "gw_" + txn.TxnRef,
		Payload:    map[string]any{"txnid": txn.TxnRef},
	}, nil
}

func (f *FakeGateway) Verify(ctx context.Context, txnRef, gatewayRef string) (*gateway.Verification, error) {
	f.mu.Lock()
	f.Verified = append(f.Verified, txnRef)
	f.mu.Unlock()

	if f.VerifyFunc != nil {
		return f.VerifyFunc(ctx, txnRef, gatewayRef)
	}
	return &gateway.Verification{Status: gateway.StatusSuccess, CaptureStatus: gateway.CaptureCaptured}, nil
}

func (f *FakeGateway) InitiateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Initiated)
}
