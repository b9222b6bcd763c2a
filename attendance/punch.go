/*
Package attendance records punches and derives the daily view.

PUNCH ENGINE:
  A self punch alternates strictly: the kind is decided by the most recent
  entry for the same user and day. Arrival status comes from the school's
  start and grace cutoffs. Entries are immutable; an administrator may add
  an override entry or delete one, nothing else.

STORAGE:
  One list under generic.KeyAttendanceLogs, most recent first.

SEE ALSO:
  - view.go: per-person daily aggregation
  - live: best-effort punch fan-out
*/
package attendance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/i18n"
	"github.com/warp/edutime/live"
	"github.com/warp/edutime/notify"
	"github.com/warp/edutime/personnel"
)

// =============================================================================
// TYPES
// =============================================================================

type Kind string

const (
	PunchIn  Kind = "Punch In"
	PunchOut Kind = "Punch Out"
)

func (k Kind) Valid() bool { return k == PunchIn || k == PunchOut }

type Status string

const (
	StatusNormal Status = "Normal"
	StatusLate   Status = "Late"
	StatusOnTime Status = "On Time"
	StatusEarly  Status = "Early"
)

type Source string

const (
	SourceSelf          Source = "self"
	SourceAdminOverride Source = "admin-override"
)

// OverrideLocation labels entries added by an administrator.
const OverrideLocation = "Administrative Override"

// LogEntry is one punch. Name and Department are copied from the user at
// punch time.
type LogEntry struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	Name       string            `json:"name"`
	Department string            `json:"department"`
	Date       generic.Date      `json:"date"`
	Time       generic.ClockTime `json:"time"`
	Kind       Kind              `json:"type"`
	Status     Status            `json:"status"`
	Location   string            `json:"location"`
	Source     Source            `json:"source"`
	Actor      string            `json:"actor,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// Hours are the school's punctuality cutoffs.
type Hours struct {
	Start generic.ClockTime
	Grace generic.ClockTime
	End   generic.ClockTime
}

// DefaultHours: 08:00 start, 08:15 grace, 15:00 end.
var DefaultHours = Hours{Start: "08:00", Grace: "08:15", End: "15:00"}

// Classify returns the status of a punch of kind at t. Arrivals after the
// grace cutoff are late, arrivals after start but not after grace are on
// time, and the rest are early. Departures are always normal.
func (h Hours) Classify(kind Kind, t generic.ClockTime) Status {
	if kind != PunchIn {
		return StatusNormal
	}
	switch {
	case t.After(h.Grace):
		return StatusLate
	case t.After(h.Start):
		return StatusOnTime
	default:
		return StatusEarly
	}
}

// Publisher receives punch events. *live.Hub implements it.
type Publisher interface {
	Publish(live.Event)
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	ledger           *generic.Ledger
	notifier         notify.Pusher
	publisher        Publisher
	clock            generic.Clock
	hours            Hours
	fallbackLocation string
}

// Options configures an Engine. Zero values fall back to DefaultHours and
// "Staff Room".
type Options struct {
	Hours            Hours
	FallbackLocation string
}

func NewEngine(ledger *generic.Ledger, notifier notify.Pusher, publisher Publisher, clock generic.Clock, opts Options) *Engine {
	if opts.Hours == (Hours{}) {
		opts.Hours = DefaultHours
	}
	if opts.FallbackLocation == "" {
		opts.FallbackLocation = "Staff Room"
	}
	return &Engine{
		ledger:           ledger,
		notifier:         notifier,
		publisher:        publisher,
		clock:            clock,
		hours:            opts.Hours,
		fallbackLocation: opts.FallbackLocation,
	}
}

// Hours returns the configured cutoffs.
func (e *Engine) Hours() Hours { return e.hours }

// RecordPunch records the next punch for userID at the current time. It
// is never rejected for a known user; an empty location gets the fallback
// label.
func (e *Engine) RecordPunch(ctx context.Context, userID, location string) (*LogEntry, error) {
	now := e.clock.Now()
	date, at := generic.DateOf(now), generic.ClockOf(now)
	if strings.TrimSpace(location) == "" {
		location = e.fallbackLocation
	}

	var entry LogEntry
	err := e.ledger.Update(ctx, func(s generic.Store) error {
		user, err := personnel.Lookup(ctx, s, userID)
		if err != nil {
			return err
		}
		logs, err := generic.LoadList[LogEntry](ctx, s, generic.KeyAttendanceLogs)
		if err != nil {
			return err
		}

		kind := nextKind(logs, userID, date)
		entry = LogEntry{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			Name:       user.Name,
			Department: user.Department,
			Date:       date,
			Time:       at,
			Kind:       kind,
			Status:     e.hours.Classify(kind, at),
			Location:   location,
			Source:     SourceSelf,
		}
		return generic.SaveJSON(ctx, s, generic.KeyAttendanceLogs, append([]LogEntry{entry}, logs...))
	})
	if err != nil {
		return nil, err
	}

	if e.publisher != nil {
		action := live.ActionArrived
		if entry.Kind == PunchOut {
			action = live.ActionDeparted
		}
		e.publisher.Publish(live.Event{UserID: entry.UserID, Name: entry.Name, Action: action, Time: entry.Time.String()})
	}
	return &entry, nil
}

// nextKind looks at the first entry for (userID, date) in stored order,
// which is the most recent one.
func nextKind(logs []LogEntry, userID string, date generic.Date) Kind {
	for _, l := range logs {
		if l.UserID == userID && l.Date == date {
			if l.Kind == PunchIn {
				return PunchOut
			}
			return PunchIn
		}
	}
	return PunchIn
}

// Override is the input of ManualOverride.
type Override struct {
	AdminID string
	UserID  string
	Kind    Kind
	Date    string
	Time    string
	Reason  string
}

// ManualOverride adds an entry on behalf of a user. The status is computed
// as for a self punch.
func (e *Engine) ManualOverride(ctx context.Context, in Override) (*LogEntry, error) {
	if !in.Kind.Valid() {
		return nil, generic.Invalid("type", "must be %q or %q", PunchIn, PunchOut)
	}
	date, err := generic.ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	at, err := generic.ParseClock("time", in.Time)
	if err != nil {
		return nil, err
	}

	var entry LogEntry
	err = e.ledger.Update(ctx, func(s generic.Store) error {
		user, err := personnel.Lookup(ctx, s, in.UserID)
		if generic.IsNotFound(err) {
			return generic.Invalid("userId", "unknown user %q", in.UserID)
		}
		if err != nil {
			return err
		}
		logs, err := generic.LoadList[LogEntry](ctx, s, generic.KeyAttendanceLogs)
		if err != nil {
			return err
		}
		entry = LogEntry{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			Name:       user.Name,
			Department: user.Department,
			Date:       date,
			Time:       at,
			Kind:       in.Kind,
			Status:     e.hours.Classify(in.Kind, at),
			Location:   OverrideLocation,
			Source:     SourceAdminOverride,
			Actor:      in.AdminID,
			Reason:     strings.TrimSpace(in.Reason),
		}
		return generic.SaveJSON(ctx, s, generic.KeyAttendanceLogs, append([]LogEntry{entry}, logs...))
	})
	if err != nil {
		return nil, err
	}

	notify.Send(ctx, e.notifier, notify.AdminTarget, notify.Info, i18n.ManualEntry,
		map[string]any{"Name": entry.Name})
	return &entry, nil
}

// DeleteLogEntry removes the entry with id. An unknown id is a no-op.
func (e *Engine) DeleteLogEntry(ctx context.Context, id string) error {
	return e.ledger.Update(ctx, func(s generic.Store) error {
		logs, err := generic.LoadList[LogEntry](ctx, s, generic.KeyAttendanceLogs)
		if err != nil {
			return err
		}
		kept := make([]LogEntry, 0, len(logs))
		for _, l := range logs {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		if len(kept) == len(logs) {
			return nil
		}
		return generic.SaveJSON(ctx, s, generic.KeyAttendanceLogs, kept)
	})
}

// Seed stores entries, given most recent first, as if they had been
// punched. Missing ids, statuses, names and departments are filled in from
// the user and the school hours.
func (e *Engine) Seed(ctx context.Context, entries []LogEntry) error {
	return e.ledger.Update(ctx, func(s generic.Store) error {
		logs, err := generic.LoadList[LogEntry](ctx, s, generic.KeyAttendanceLogs)
		if err != nil {
			return err
		}
		seeded := make([]LogEntry, 0, len(entries)+len(logs))
		for _, entry := range entries {
			user, err := personnel.Lookup(ctx, s, entry.UserID)
			if err != nil {
				return err
			}
			if entry.ID == "" {
				entry.ID = uuid.NewString()
			}
			if entry.Name == "" {
				entry.Name = user.Name
			}
			if entry.Department == "" {
				entry.Department = user.Department
			}
			if entry.Status == "" {
				entry.Status = e.hours.Classify(entry.Kind, entry.Time)
			}
			if entry.Location == "" {
				entry.Location = e.fallbackLocation
			}
			if entry.Source == "" {
				entry.Source = SourceSelf
			}
			seeded = append(seeded, entry)
		}
		return generic.SaveJSON(ctx, s, generic.KeyAttendanceLogs, append(seeded, logs...))
	})
}

// =============================================================================
// QUERIES
// =============================================================================

// Entries returns entries dated within [from, to], in stored order.
func (e *Engine) Entries(ctx context.Context, from, to generic.Date) ([]LogEntry, error) {
	var out []LogEntry
	err := e.ledger.View(ctx, func(s generic.Store) error {
		logs, err := generic.LoadList[LogEntry](ctx, s, generic.KeyAttendanceLogs)
		if err != nil {
			return err
		}
		for _, l := range logs {
			if l.Date.Within(from, to) {
				out = append(out, l)
			}
		}
		return nil
	})
	return out, err
}

// Today returns userID's entries for the current day, most recent first.
func (e *Engine) Today(ctx context.Context, userID string) ([]LogEntry, error) {
	today := generic.DateOf(e.clock.Now())
	all, err := e.Entries(ctx, today, today)
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(all))
	for _, l := range all {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// IsPunchedIn reports whether userID's latest entry today is a Punch In.
func (e *Engine) IsPunchedIn(ctx context.Context, userID string) (bool, error) {
	today, err := e.Today(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(today) > 0 && today[0].Kind == PunchIn, nil
}
