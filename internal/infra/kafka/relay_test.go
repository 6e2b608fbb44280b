package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/repo"
	"streamdraw/internal/testutil"

	kafkago "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

func TestFlush_PublishesInOrder(t *testing.T) {
	db := testutil.NewDB(t)
	pr := repo.NewParticipationRepo(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "asha", "9876543210")
	s := testutil.CreateStream(t, db, "Show", 500, streams.StatusOpen)

	p := &billing.Payment{TxnRef: "TXN1", Gateway: "fake", Status: billing.StatusPending, Amount: 500, UserID: u.ID, StreamID: s.ID}
	if err := pr.CreatePayment(ctx, p); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.CompletePayment(ctx, p, billing.StatusSuccess, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.AddParticipant(ctx, s.ID, u.ID); err != nil {
		t.Fatal(err)
	}

	w := &fakeWriter{}
	relay := NewRelay(repo.NewOutboxRepo(db), w, time.Second, 1)

	n, err := relay.Flush(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Flush = %d, %v", n, err)
	}
	if w.count() != 2 {
		t.Fatalf("published %d messages", w.count())
	}
	if got := string(w.messages[0].Headers[0].Value); got != "payment.succeeded" {
		t.Errorf("first event = %s", got)
	}
	if string(w.messages[1].Key) != string(w.messages[0].Key) {
		t.Error("events for one stream must share a partition key")
	}

	if n, _ := relay.Flush(ctx); n != 0 {
		t.Errorf("second flush relayed %d messages", n)
	}
}

func TestFlush_KeepsMessagesOnWriteFailure(t *testing.T) {
	db := testutil.NewDB(t)
	pr := repo.NewParticipationRepo(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "asha", "9876543210")
	s := testutil.CreateStream(t, db, "Show", 500, streams.StatusOpen)
	if _, err := pr.AddParticipant(ctx, s.ID, u.ID); err != nil {
		t.Fatal(err)
	}

	w := &fakeWriter{err: errors.New("leader not available")}
	relay := NewRelay(repo.NewOutboxRepo(db), w, time.Second, 10)
	if _, err := relay.Flush(ctx); err == nil {
		t.Fatal("expected write error")
	}

	w.err = nil
	if n, err := relay.Flush(ctx); err != nil || n != 1 {
		t.Fatalf("retry Flush = %d, %v", n, err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	db := testutil.NewDB(t)
	w := &fakeWriter{}
	relay := NewRelay(repo.NewOutboxRepo(db), w, 10*time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !w.closed {
		t.Error("writer not closed")
	}
}
