package repo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"streamdraw/database"
	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/participation"
	"streamdraw/internal/testutil"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Runs the row-lock sensitive paths against a real postgres. Opt in with
// STREAMDRAW_INTEGRATION=1; needs a docker daemon.
func TestPostgres_ConcurrentSuccessIsSingle(t *testing.T) {
	if os.Getenv("STREAMDRAW_INTEGRATION") != "1" {
		t.Skip("set STREAMDRAW_INTEGRATION=1 to run against postgres")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("streamdraw"),
		tcpostgres.WithUsername("streamdraw"),
		tcpostgres.WithPassword("streamdraw"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := NewParticipationRepo(db)
	u := testutil.CreateUser(t, db, "asha", "9876543210")
	s := testutil.CreateStream(t, db, "Show", 500, streams.StatusOpen)

	const n = 6
	payments := make([]*billing.Payment, n)
	for i := range payments {
		payments[i] = pendingPayment(t, db, "TXN-PG-"+string(rune('A'+i)), u.ID, s.ID)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for _, p := range payments {
		wg.Add(1)
		go func(p *billing.Payment) {
			defer wg.Done()
			err := r.Transaction(ctx, func(tx participation.Store) error {
				ok, err := tx.CompletePayment(ctx, p, billing.StatusSuccess, "")
				if err != nil || !ok {
					return err
				}
				mu.Lock()
				won++
				mu.Unlock()
				_, err = tx.AddParticipant(ctx, s.ID, u.ID)
				return err
			})
			if err != nil {
				t.Errorf("transaction: %v", err)
			}
		}(p)
	}
	wg.Wait()

	var successes int64
	db.Model(&billing.Payment{}).Where("status = ?", billing.StatusSuccess).Count(&successes)
	if successes != 1 || won != 1 {
		t.Errorf("successes = %d (won %d), want 1", successes, won)
	}
	if ids := testutil.ParticipantIDs(t, db, s.ID); len(ids) != 1 {
		t.Errorf("participants = %v", ids)
	}
}
