/*
Package generic provides the storage-agnostic core of the ledger.

PURPOSE:
  The school's records live in a handful of named collections (users,
  attendance logs, leave requests, the leave type catalog, per-user
  balances, notifications). This package owns the contract for storing
  them, the serializing Ledger that every mutation goes through, the
  error taxonomy, and the small value types shared by the domain packages.

KEY CONCEPTS IN THIS FILE (types.go):
  - Days: a decimal quantity of leave days (half-days are 0.5)
  - Balances: per-user map of leave type name to remaining days

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal, never float64, for day counts
  2. Explicit dependencies: the Store is injected, never global
  3. One writer: all read-modify-write cycles are serialized by Ledger

SEE ALSO:
  - store.go: Store / TxStore contract and collection keys
  - ledger.go: serializing wrapper
  - time.go: calendar dates and wall-clock times
*/
package generic

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DAYS - Leave quantities
// =============================================================================

var (
	// HalfDay is the amount debited by a half-day leave request.
	HalfDay = decimal.NewFromFloat(0.5)
)

// NewDays returns n whole days.
func NewDays(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// =============================================================================
// BALANCES - Remaining days per leave type name
// =============================================================================

// Balances maps a leave type display name to its remaining day count.
type Balances map[string]decimal.Decimal

// Clone returns an independent copy.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Names returns the leave type names in sorted order.
func (b Balances) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
