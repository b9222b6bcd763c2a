/*
Package notify manages the notifications collection.

PURPOSE:
  Notifications are short messages addressed either to the shared ADMIN
  inbox or to one user. Domain operations push them after their own write
  commits; a failed push is logged by the caller and never undoes the
  operation that triggered it.

STORAGE:
  One list under generic.KeyNotifications, most recent first.

USAGE:
  center := notify.NewCenter(ledger, translator, clock)
  _, err := center.Push(ctx, notify.AdminTarget, notify.Info, i18n.ManualEntry,
      map[string]any{"Name": "Arjun Singh"})
*/
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/i18n"
)

// AdminTarget addresses the inbox shared by all administrators.
const AdminTarget = "ADMIN"

// Category drives how clients style a notification.
type Category string

const (
	Success Category = "success"
	Info    Category = "info"
	Warning Category = "warning"
	Error   Category = "error"
)

// Notification is one inbox entry.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Category  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Center reads and writes notifications through the ledger.
type Center struct {
	ledger     *generic.Ledger
	translator *i18n.Translator
	clock      generic.Clock
}

func NewCenter(ledger *generic.Ledger, translator *i18n.Translator, clock generic.Clock) *Center {
	return &Center{ledger: ledger, translator: translator, clock: clock}
}

// Push renders msg for the context locale and prepends it to the inbox of
// target.
func (c *Center) Push(ctx context.Context, target string, category Category, msg i18n.Message, data map[string]any) (*Notification, error) {
	title, body := c.translator.Render(ctx, msg, data)
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    target,
		Title:     title,
		Message:   body,
		Type:      category,
		Timestamp: c.clock.Now().UTC(),
	}

	err := c.ledger.Update(ctx, func(s generic.Store) error {
		all, err := generic.LoadList[Notification](ctx, s, generic.KeyNotifications)
		if err != nil {
			return err
		}
		return generic.SaveJSON(ctx, s, generic.KeyNotifications, append([]Notification{n}, all...))
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns the notifications addressed to target, newest first.
func (c *Center) List(ctx context.Context, target string) ([]Notification, error) {
	var out []Notification
	err := c.ledger.View(ctx, func(s generic.Store) error {
		all, err := generic.LoadList[Notification](ctx, s, generic.KeyNotifications)
		if err != nil {
			return err
		}
		out = filter(all, func(n Notification) bool { return n.UserID == target })
		return nil
	})
	return out, err
}

// UnreadCount counts target's unread notifications.
func (c *Center) UnreadCount(ctx context.Context, target string) (int, error) {
	list, err := c.List(ctx, target)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one notification read. target must own it.
func (c *Center) MarkRead(ctx context.Context, target, id string) error {
	return c.ledger.Update(ctx, func(s generic.Store) error {
		all, err := generic.LoadList[Notification](ctx, s, generic.KeyNotifications)
		if err != nil {
			return err
		}
		for i := range all {
			if all[i].ID == id && all[i].UserID == target {
				if all[i].Read {
					return nil
				}
				all[i].Read = true
				return generic.SaveJSON(ctx, s, generic.KeyNotifications, all)
			}
		}
		return &generic.NotFoundError{Kind: "notification", ID: id}
	})
}

// MarkAllRead marks every notification of target read.
func (c *Center) MarkAllRead(ctx context.Context, target string) error {
	return c.ledger.Update(ctx, func(s generic.Store) error {
		all, err := generic.LoadList[Notification](ctx, s, generic.KeyNotifications)
		if err != nil {
			return err
		}
		changed := false
		for i := range all {
			if all[i].UserID == target && !all[i].Read {
				all[i].Read = true
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return generic.SaveJSON(ctx, s, generic.KeyNotifications, all)
	})
}

// Clear removes target's notifications and keeps everyone else's.
func (c *Center) Clear(ctx context.Context, target string) error {
	return c.ledger.Update(ctx, func(s generic.Store) error {
		all, err := generic.LoadList[Notification](ctx, s, generic.KeyNotifications)
		if err != nil {
			return err
		}
		kept := filter(all, func(n Notification) bool { return n.UserID != target })
		if len(kept) == len(all) {
			return nil
		}
		return generic.SaveJSON(ctx, s, generic.KeyNotifications, kept)
	})
}

func filter(in []Notification, keep func(Notification) bool) []Notification {
	out := make([]Notification, 0, len(in))
	for _, n := range in {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// Pusher is the part of Center that domain packages depend on.
type Pusher interface {
	Push(ctx context.Context, target string, category Category, msg i18n.Message, data map[string]any) (*Notification, error)
}

var _ Pusher = (*Center)(nil)

// Send pushes a notification whose failure must not fail the caller. Errors
// are logged at WARN. A nil Pusher drops the notification.
func Send(ctx context.Context, p Pusher, target string, category Category, msg i18n.Message, data map[string]any) {
	if p == nil {
		return
	}
	if _, err := p.Push(ctx, target, category, msg, data); err != nil {
		slog.WarnContext(ctx, "notification dropped", "target", target, "message", msg.Title, "error", err)
	}
}
