package participation

import (
	"context"
	"fmt"
	"log"
	"time"
)

const reconcileBatch = 100

// ReconcileStale resolves Pending payments older than olderThan through the
// same path a gateway callback takes. It is a one-shot sweep.
func (e *Engine) ReconcileStale(ctx context.Context, olderThan time.Duration) (map[Outcome]int, error) {
	before := e.now().Add(-olderThan)
	pending, err := e.store.ListPendingBefore(ctx, before, reconcileBatch)
	if err != nil {
		return nil, fmt.Errorf("list stale pending payments: %w", err)
	}

	counts := make(map[Outcome]int)
	if len(pending) == 0 {
		return counts, nil
	}
	log.Printf("Found %d stale pending payments. Reconciling...", len(pending))

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		res := e.ResolveCallback(ctx, Callback{TxnRef: p.TxnRef})
		counts[res.Outcome]++
		log.Printf("txn %s -> %s", p.TxnRef, res.Outcome)
	}
	return counts, nil
}
