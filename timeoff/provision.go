package timeoff

import (
	"context"

	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/personnel"
)

// =============================================================================
// PROVISIONER - Lazy per-user balance reconciliation
// =============================================================================

// Provisioner fills in missing balances from the catalog. Any path that
// reads or debits a balance goes through it first.
type Provisioner struct {
	ledger  *generic.Ledger
	catalog *Catalog
}

func NewProvisioner(ledger *generic.Ledger, catalog *Catalog) *Provisioner {
	return &Provisioner{ledger: ledger, catalog: catalog}
}

// EnsureBalances returns userID's balances after adding the default
// balance of every catalog type missing from the map. It writes only when
// something was added, so a second call is a no-op. Users outside the
// directory get a NotFoundError and nothing is written.
func (p *Provisioner) EnsureBalances(ctx context.Context, userID string) (generic.Balances, error) {
	if userID == "" {
		return nil, generic.Invalid("userId", "is required")
	}
	var out generic.Balances
	err := p.ledger.Update(ctx, func(s generic.Store) error {
		if _, err := personnel.Lookup(ctx, s, userID); err != nil {
			return err
		}
		types, err := p.catalog.listLocked(ctx, s)
		if err != nil {
			return err
		}
		out, err = ensureLocked(ctx, s, userID, types)
		return err
	})
	return out, err
}

// ensureLocked provisions balances inside a running Update.
func ensureLocked(ctx context.Context, s generic.Store, userID string, types []LeaveType) (generic.Balances, error) {
	balances := generic.Balances{}
	if _, err := generic.LoadJSON(ctx, s, generic.BalanceKey(userID), &balances); err != nil {
		return nil, err
	}
	if balances == nil {
		balances = generic.Balances{}
	}

	changed := false
	for _, t := range types {
		if _, ok := balances[t.Name]; !ok {
			balances[t.Name] = t.DefaultBalance
			changed = true
		}
	}
	if changed {
		if err := generic.SaveJSON(ctx, s, generic.BalanceKey(userID), balances); err != nil {
			return nil, err
		}
	}
	return balances, nil
}
