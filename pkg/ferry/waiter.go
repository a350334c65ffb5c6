package ferry

import (
	"context"
	"errors"
)

// ErrAwaitCancelled means the context expired before a publication in
// the awaited mode arrived.
var ErrAwaitCancelled = errors.New("cancelled while waiting for results")

// SnapshotWaiter adapts the orchestrator's push-style publication to
// the blocking style one-shot command surfaces want. Pass Observe as
// the publication observer and Await the mode you triggered.
type SnapshotWaiter struct {
	ch chan Snapshot
}

func NewSnapshotWaiter() *SnapshotWaiter {
	return &SnapshotWaiter{ch: make(chan Snapshot, 16)}
}

// Observe records a publication. Never blocks the orchestrator; if
// the buffer is full the oldest unread snapshot is dropped.
func (w *SnapshotWaiter) Observe(s Snapshot) {
	for {
		select {
		case w.ch <- s:
			return
		default:
			select {
			case <-w.ch:
			default:
			}
		}
	}
}

// Await blocks until a publication in the given mode arrives and
// returns it. An empty result list is a valid outcome.
func (w *SnapshotWaiter) Await(ctx context.Context, mode Mode) (Snapshot, error) {
	for {
		select {
		case s := <-w.ch:
			if s.Mode == mode {
				return s, nil
			}
		case <-ctx.Done():
			return Snapshot{}, ErrAwaitCancelled
		}
	}
}
