/*
ledger.go - Serializing writer over the collection store

PURPOSE:
  The Ledger is the single writer for all collections. Every
  read-modify-write cycle runs inside Update, holding a process-wide lock,
  so two requests touching the same collection cannot lose an update.

ATOMICITY:
  If the underlying Store implements TxStore, Update runs the whole cycle
  in one transaction: submitting leave writes the request and debits the
  balance together or not at all. On a plain Store (MongoDB without a
  replica set) each Put stands alone, and a failure between two writes
  leaves the first one in place.

EXAMPLE FLOW:
  err := ledger.Update(ctx, func(s generic.Store) error {
      logs, err := generic.LoadList[LogEntry](ctx, s, generic.KeyAttendanceLogs)
      ...
      return generic.SaveJSON(ctx, s, generic.KeyAttendanceLogs, logs)
  })

  Functions passed to Update or View must not call back into the Ledger;
  the lock is not reentrant.

SEE ALSO:
  - store.go: Low-level persistence interface
*/
package generic

import (
	"context"
	"sync"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	store Store
	mu    sync.RWMutex
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Store returns the underlying store.
func (l *Ledger) Store() Store { return l.store }

// Atomic reports whether Update commits all of its writes together.
func (l *Ledger) Atomic() bool {
	_, ok := l.store.(TxStore)
	return ok
}

// Update runs fn with exclusive access to the store.
func (l *Ledger) Update(ctx context.Context, fn func(Store) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tx, ok := l.store.(TxStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(l.store)
}

// View runs fn with shared access to the store. fn must not write.
func (l *Ledger) View(ctx context.Context, fn func(Store) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.store)
}

// Reset deletes every collection.
func (l *Ledger) Reset(ctx context.Context) error {
	return l.Update(ctx, func(s Store) error {
		keys, err := s.Keys(ctx, "")
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := s.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}
