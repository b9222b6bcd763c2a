package attendance

import (
	"context"
	"sort"

	"github.com/warp/edutime/generic"
)

// NoTime marks a missing in or out time in a DailyRecord.
const NoTime = "-"

// DailyRecord is one person's day derived from their entries.
type DailyRecord struct {
	UserID     string       `json:"userId"`
	Name       string       `json:"name"`
	Department string       `json:"department"`
	Date       generic.Date `json:"date"`
	In         string       `json:"in"`
	Out        string       `json:"out"`
	Status     Status       `json:"status"`
	Location   string       `json:"location"`
	RecordIDs  []string     `json:"recordIds"`
}

// DailyView aggregates the entries of date per user.
func (e *Engine) DailyView(ctx context.Context, date generic.Date) ([]DailyRecord, error) {
	entries, err := e.Entries(ctx, date, date)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries, date, e.fallbackLocation), nil
}

// Aggregate groups entries by (user, date) and keeps only date. For each
// user: the earliest Punch In, the latest Punch Out, Late if any entry is
// late, and the location of the last entry in iteration order. Entries
// are stored most recent first, so that is usually the day's oldest
// location. Records are sorted by In, descending as strings.
func Aggregate(entries []LogEntry, date generic.Date, fallbackLocation string) []DailyRecord {
	byUser := make(map[string]*DailyRecord)
	var order []string

	for _, l := range entries {
		if l.Date != date {
			continue
		}
		rec, ok := byUser[l.UserID]
		if !ok {
			rec = &DailyRecord{
				UserID:     l.UserID,
				Name:       l.Name,
				Department: l.Department,
				Date:       l.Date,
				In:         NoTime,
				Out:        NoTime,
				Status:     StatusNormal,
				Location:   fallbackLocation,
			}
			byUser[l.UserID] = rec
			order = append(order, l.UserID)
		}

		t := l.Time.String()
		switch l.Kind {
		case PunchIn:
			if rec.In == NoTime || t < rec.In {
				rec.In = t
			}
		case PunchOut:
			if rec.Out == NoTime || t > rec.Out {
				rec.Out = t
			}
		}
		if l.Status == StatusLate {
			rec.Status = StatusLate
		}
		if l.Location != "" {
			rec.Location = l.Location
		}
		rec.RecordIDs = append(rec.RecordIDs, l.ID)
	}

	out := make([]DailyRecord, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].In > out[j].In })
	return out
}
