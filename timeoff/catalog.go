package timeoff

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/i18n"
	"github.com/warp/edutime/notify"
)

// =============================================================================
// CATALOG - Administrator-managed leave types
// =============================================================================

// NewLeaveType is the input of Catalog.AddType.
type NewLeaveType struct {
	Name           string
	DefaultBalance decimal.Decimal
	Icon           string
	Color          string
}

// Catalog manages the leave type collection. An absent collection is
// seeded with the defaults on first read; an emptied one stays empty.
type Catalog struct {
	ledger   *generic.Ledger
	notifier notify.Pusher
	defaults []LeaveType
}

// NewCatalog returns a catalog seeded from defaults, or DefaultLeaveTypes
// when defaults is nil.
func NewCatalog(ledger *generic.Ledger, notifier notify.Pusher, defaults []LeaveType) *Catalog {
	if defaults == nil {
		defaults = DefaultLeaveTypes
	}
	return &Catalog{ledger: ledger, notifier: notifier, defaults: defaults}
}

// List returns the current leave types.
func (c *Catalog) List(ctx context.Context) ([]LeaveType, error) {
	var (
		types  []LeaveType
		seeded bool
	)
	err := c.ledger.View(ctx, func(s generic.Store) error {
		var err error
		seeded, err = generic.LoadJSON(ctx, s, generic.KeyLeaveTypes, &types)
		return err
	})
	if err != nil || seeded {
		return types, err
	}

	err = c.ledger.Update(ctx, func(s generic.Store) error {
		var err error
		types, err = c.listLocked(ctx, s)
		return err
	})
	return types, err
}

// listLocked reads the catalog inside an Update, seeding it if absent.
func (c *Catalog) listLocked(ctx context.Context, s generic.Store) ([]LeaveType, error) {
	var types []LeaveType
	found, err := generic.LoadJSON(ctx, s, generic.KeyLeaveTypes, &types)
	if err != nil {
		return nil, err
	}
	if found {
		return types, nil
	}
	types = append([]LeaveType(nil), c.defaults...)
	if err := generic.SaveJSON(ctx, s, generic.KeyLeaveTypes, types); err != nil {
		return nil, err
	}
	return types, nil
}

// AddType appends a new leave type. Existing users receive its balance on
// their next provisioning.
func (c *Catalog) AddType(ctx context.Context, in NewLeaveType) (*LeaveType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, generic.Invalid("name", "is required")
	}
	if in.DefaultBalance.IsNegative() {
		return nil, generic.Invalid("defaultBalance", "must not be negative")
	}

	lt := LeaveType{
		Name:           name,
		DefaultBalance: in.DefaultBalance,
		Icon:           in.Icon,
		Color:          in.Color,
	}
	err := c.ledger.Update(ctx, func(s generic.Store) error {
		types, err := c.listLocked(ctx, s)
		if err != nil {
			return err
		}
		for _, t := range types {
			if strings.EqualFold(t.Name, name) {
				return generic.Invalid("name", "leave type %q already exists", name)
			}
		}
		lt.ID = uniqueTypeID(types)
		return generic.SaveJSON(ctx, s, generic.KeyLeaveTypes, append(types, lt))
	})
	if err != nil {
		return nil, err
	}

	notify.Send(ctx, c.notifier, notify.AdminTarget, notify.Info, i18n.LeaveTypeAdded,
		map[string]any{"Name": lt.Name})
	return &lt, nil
}

// RemoveType deletes a leave type from the catalog. Balances and requests
// that name it are left alone. Removing an unknown id is a no-op.
func (c *Catalog) RemoveType(ctx context.Context, id string) error {
	return c.ledger.Update(ctx, func(s generic.Store) error {
		types, err := c.listLocked(ctx, s)
		if err != nil {
			return err
		}
		kept := make([]LeaveType, 0, len(types))
		for _, t := range types {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(types) {
			return nil
		}
		return generic.SaveJSON(ctx, s, generic.KeyLeaveTypes, kept)
	})
}

// find matches ref against type ids first, then names.
func find(types []LeaveType, ref string) (LeaveType, bool) {
	for _, t := range types {
		if t.ID == ref {
			return t, true
		}
	}
	for _, t := range types {
		if t.Name == ref {
			return t, true
		}
	}
	return LeaveType{}, false
}

func uniqueTypeID(types []LeaveType) string {
	for {
		id := generic.ShortID("lt-", 5)
		if _, taken := find(types, id); !taken {
			return id
		}
	}
}
