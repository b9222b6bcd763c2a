/*
store.go - Persistence interface for the ledger collections

PURPOSE:
  Defines the interface between the domain logic and the database.
  The ledger is a set of named collections, each persisted as a single
  JSON document under a namespaced key. Different implementations can
  use SQLite, PostgreSQL, MongoDB, or in-memory storage.

KEY INTERFACES:
  Store:   Get / Put / Delete / Keys on JSON blobs
  TxStore: Store plus WithTx for atomic multi-key writes

KEYS:
  users                 []personnel.User
  attendance_logs       []attendance.LogEntry   (most-recent-first)
  leave_requests        []timeoff.LeaveRequest  (most-recent-first)
  leave_types           []timeoff.LeaveType
  balances:<userId>     generic.Balances
  notifications         []notify.Notification   (most-recent-first)

WHOLE-COLLECTION WRITES:
  Every mutation reads an entire collection, modifies it, and writes it
  back. Ledger (ledger.go) serializes those cycles inside one process so
  concurrent requests cannot lose each other's updates.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: Default, file or :memory:
  - store/postgres/postgres.go: PostgreSQL
  - store/mongo/mongo.go: MongoDB (no TxStore)

SEE ALSO:
  - ledger.go: Higher-level wrapper using Store
*/
package generic

import (
	"context"
	"encoding/json"
	"fmt"
)

// =============================================================================
// COLLECTION KEYS
// =============================================================================

const (
	KeyUsers          = "users"
	KeyAttendanceLogs = "attendance_logs"
	KeyLeaveRequests  = "leave_requests"
	KeyLeaveTypes     = "leave_types"
	KeyNotifications  = "notifications"

	// BalancePrefix namespaces per-user balance maps.
	BalancePrefix = "balances:"
)

// BalanceKey returns the key holding userID's balance map.
func BalanceKey(userID string) string { return BalancePrefix + userID }

// =============================================================================
// STORE - Interface for key/value persistence
// =============================================================================

// Store persists opaque JSON documents under string keys.
type Store interface {
	// Get returns the document at key. found is false if the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put creates or replaces the document at key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// JSON HELPERS
// =============================================================================

// LoadJSON decodes the document at key into v. It returns false, leaving v
// untouched, when the key does not exist.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it at key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// LoadList decodes a collection stored as a JSON array. A missing key is an
// empty collection.
func LoadList[T any](ctx context.Context, s Store, key string) ([]T, error) {
	var items []T
	if _, err := LoadJSON(ctx, s, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}
