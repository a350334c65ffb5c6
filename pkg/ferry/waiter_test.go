package ferry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSnapshotWaiter_DeliversMatchingMode(t *testing.T) {
	w := NewSnapshotWaiter()
	w.Observe(Snapshot{Mode: ModeIdle, Version: 1})
	w.Observe(Snapshot{Mode: ModeSearch, Version: 2, Results: []Result{{}}})

	snap, err := w.Await(context.Background(), ModeSearch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version != 2 {
		t.Errorf("expected the search publication, got version %d", snap.Version)
	}
}

func TestSnapshotWaiter_CancelledContext(t *testing.T) {
	w := NewSnapshotWaiter()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := w.Await(ctx, ModeLocation)
	if !errors.Is(err, ErrAwaitCancelled) {
		t.Fatalf("expected ErrAwaitCancelled, got %v", err)
	}
}

func TestSnapshotWaiter_ObserveNeverBlocks(t *testing.T) {
	w := NewSnapshotWaiter()
	for i := 0; i < 100; i++ {
		w.Observe(Snapshot{Mode: ModeSearch, Version: uint64(i)})
	}
	snap, err := w.Await(context.Background(), ModeSearch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version == 0 {
		t.Errorf("oldest snapshots should have been dropped under pressure")
	}
}
