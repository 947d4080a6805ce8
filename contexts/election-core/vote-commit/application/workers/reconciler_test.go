package workers

import (
	"context"
	"testing"
	"time"

	"ballotchain/contexts/election-core/vote-commit/adapters/memory"
)

func TestReconcilerReportsOnlyStaleUnconfirmed(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()

	// Old stranded reservation.
	if err := store.Reserve(ctx, "voter-stale", 1); err != nil {
		t.Fatalf("reserve returned error: %v", err)
	}
	// Confirmed vote of the same age must not be reported.
	if err := store.Reserve(ctx, "voter-done", 1); err != nil {
		t.Fatalf("reserve returned error: %v", err)
	}
	if err := store.Confirm(ctx, "voter-done", 1, "0xabc"); err != nil {
		t.Fatalf("confirm returned error: %v", err)
	}

	reconciler := Reconciler{
		Ledger: store,
		MinAge: time.Nanosecond,
	}
	time.Sleep(5 * time.Millisecond)

	stranded, err := reconciler.RunOnce(ctx)
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if len(stranded) != 1 {
		t.Fatalf("expected 1 stranded reservation, got %d", len(stranded))
	}
	if stranded[0].VoterID != "voter-stale" {
		t.Fatalf("expected voter-stale, got %s", stranded[0].VoterID)
	}
}

func TestReconcilerSkipsFreshReservations(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	if err := store.Reserve(ctx, "voter-inflight", 1); err != nil {
		t.Fatalf("reserve returned error: %v", err)
	}

	reconciler := Reconciler{
		Ledger: store,
		MinAge: time.Hour,
	}
	stranded, err := reconciler.RunOnce(ctx)
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if len(stranded) != 0 {
		t.Fatalf("in-flight reservation must not be reported, got %d", len(stranded))
	}
}
