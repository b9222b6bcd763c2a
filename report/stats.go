package report

import (
	"context"
	"math"
	"sort"

	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/personnel"
	"github.com/warp/edutime/timeoff"
)

// TrendDays is the length of the attendance trend.
const TrendDays = 7

// Today summarizes the current day.
type Today struct {
	Present        int `json:"present"`
	Late           int `json:"late"`
	OnLeave        int `json:"onLeave"`
	Total          int `json:"total"`
	AttendanceRate int `json:"attendanceRate"`
}

// TrendPoint counts arrivals on one day.
type TrendPoint struct {
	Date    generic.Date `json:"date"`
	Day     string       `json:"day"`
	Present int          `json:"present"`
	Late    int          `json:"late"`
}

// ReasonCount counts requests of one leave type.
type ReasonCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Dashboard struct {
	Today          Today         `json:"today"`
	Trend          []TrendPoint  `json:"trend"`
	AbsenceReasons []ReasonCount `json:"absenceReasons"`
}

// Summarize computes the dashboard for today from punches, leave requests
// and the head count.
//
// Present counts distinct users with a Punch In today, Late counts today's
// late Punch Ins, and OnLeave counts approved requests covering today.
func Summarize(today generic.Date, logs []attendance.LogEntry, requests []timeoff.LeaveRequest, total int) Dashboard {
	d := Dashboard{Today: Today{Total: total}, AbsenceReasons: []ReasonCount{}}

	byDay := make(map[generic.Date]*TrendPoint, TrendDays)
	seen := make(map[generic.Date]map[string]bool, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		date := today.AddDays(-i)
		d.Trend = append(d.Trend, TrendPoint{Date: date, Day: date.Time().Weekday().String()[:3]})
		seen[date] = map[string]bool{}
	}
	for i := range d.Trend {
		byDay[d.Trend[i].Date] = &d.Trend[i]
	}

	for _, l := range logs {
		p, ok := byDay[l.Date]
		if !ok || l.Kind != attendance.PunchIn {
			continue
		}
		if !seen[l.Date][l.UserID] {
			seen[l.Date][l.UserID] = true
			p.Present++
		}
		if l.Status == attendance.StatusLate {
			p.Late++
		}
	}
	if p := byDay[today]; p != nil {
		d.Today.Present = p.Present
		d.Today.Late = p.Late
	}
	if total > 0 {
		d.Today.AttendanceRate = int(math.Round(float64(d.Today.Present) / float64(total) * 100))
	}

	counts := map[string]int{}
	for _, r := range requests {
		counts[r.LeaveTypeName]++
		if r.Status == timeoff.StatusApproved && r.Covers(today) {
			d.Today.OnLeave++
		}
	}
	for name, n := range counts {
		d.AbsenceReasons = append(d.AbsenceReasons, ReasonCount{Name: name, Value: n})
	}
	sort.Slice(d.AbsenceReasons, func(i, j int) bool { return d.AbsenceReasons[i].Name < d.AbsenceReasons[j].Name })
	return d
}

// Stats gathers dashboard inputs from the services.
type Stats struct {
	attendance *attendance.Engine
	leave      *timeoff.Workflow
	users      *personnel.Directory
	clock      generic.Clock
}

func NewStats(attendance *attendance.Engine, leave *timeoff.Workflow, users *personnel.Directory, clock generic.Clock) *Stats {
	return &Stats{attendance: attendance, leave: leave, users: users, clock: clock}
}

func (s *Stats) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := generic.DateOf(s.clock.Now())

	logs, err := s.attendance.Entries(ctx, today.AddDays(-(TrendDays - 1)), today)
	if err != nil {
		return nil, err
	}
	requests, err := s.leave.List(ctx, timeoff.Filter{})
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	d := Summarize(today, logs, requests, len(users))
	return &d, nil
}
