package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/report"
	"github.com/warp/edutime/timeoff"
	"github.com/xuri/excelize/v2"
)

type fakeSource []attendance.LogEntry

func (f fakeSource) Entries(_ context.Context, from, to generic.Date) ([]attendance.LogEntry, error) {
	var out []attendance.LogEntry
	for _, e := range f {
		if e.Date.Within(from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

var sample = fakeSource{
	{ID: "3", UserID: "22", Name: "Mrs. Keith Jones", Department: "Mathematics", Date: "2024-01-11", Time: "08:20", Kind: attendance.PunchIn, Status: attendance.StatusLate, Location: "Gate, North"},
	{ID: "2", UserID: "3", Name: "Dr. Albert Smith", Department: "Science (Physics)", Date: "2024-01-10", Time: "15:00", Kind: attendance.PunchOut, Status: attendance.StatusNormal, Location: "Staff Room"},
	{ID: "1", UserID: "3", Name: "Dr. Albert Smith", Department: "Science (Physics)", Date: "2024-01-10", Time: "07:58", Kind: attendance.PunchIn, Status: attendance.StatusEarly, Location: "Staff Room"},
	{ID: "0", UserID: "3", Name: "Dr. Albert Smith", Department: "Science (Physics)", Date: "2024-01-02", Time: "08:00", Kind: attendance.PunchIn, Status: attendance.StatusEarly, Location: "Staff Room"},
}

// =============================================================================
// EXPORT
// =============================================================================

func TestWriteCSV(t *testing.T) {
	x := report.NewExporter(sample)
	rows, err := x.Rows(context.Background(), "2024-01-10", "2024-01-11")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, rows))

	want := "Date,Name,Department,Time,Type,Status,Location\n" +
		"2024-01-11,Mrs. Keith Jones,Mathematics,08:20,Punch In,Late,\"Gate, North\"\n" +
		"2024-01-10,Dr. Albert Smith,Science (Physics),15:00,Punch Out,Normal,Staff Room\n" +
		"2024-01-10,Dr. Albert Smith,Science (Physics),07:58,Punch In,Early,Staff Room\n"
	assert.Equal(t, want, buf.String())
}

func TestRows_EmptyRangeIsNotFound(t *testing.T) {
	x := report.NewExporter(sample)
	_, err := x.Rows(context.Background(), "2023-01-01", "2023-01-31")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestRows_Validation(t *testing.T) {
	x := report.NewExporter(sample)
	_, err := x.Rows(context.Background(), "2024-01-11", "2024-01-10")
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = x.Rows(context.Background(), "", "2024-01-10")
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestWriteXLSX(t *testing.T) {
	x := report.NewExporter(sample)
	rows, err := x.Rows(context.Background(), "2024-01-10", "2024-01-10")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, report.SheetName, f.GetSheetName(0))
	got, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, report.Header, got[0])
	assert.Equal(t, []string{"2024-01-10", "Dr. Albert Smith", "Science (Physics)", "15:00", "Punch Out", "Normal", "Staff Room"}, got[1])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "school_attendance_2024-01-01_to_2024-01-07.csv", report.FileName("2024-01-01", "2024-01-07", "csv"))
}

// =============================================================================
// STATS
// =============================================================================

func TestSummarize(t *testing.T) {
	today := generic.Date("2024-01-11")
	logs := []attendance.LogEntry{
		{UserID: "22", Date: "2024-01-11", Kind: attendance.PunchIn, Status: attendance.StatusLate},
		{UserID: "22", Date: "2024-01-11", Kind: attendance.PunchOut, Status: attendance.StatusNormal},
		{UserID: "22", Date: "2024-01-11", Kind: attendance.PunchIn, Status: attendance.StatusLate},
		{UserID: "3", Date: "2024-01-11", Kind: attendance.PunchIn, Status: attendance.StatusEarly},
		{UserID: "3", Date: "2024-01-10", Kind: attendance.PunchIn, Status: attendance.StatusOnTime},
		{UserID: "3", Date: "2024-01-01", Kind: attendance.PunchIn, Status: attendance.StatusLate},
	}
	requests := []timeoff.LeaveRequest{
		{LeaveTypeName: "Casual Leave", Status: timeoff.StatusApproved, StartDate: "2024-01-10", EndDate: "2024-01-12"},
		{LeaveTypeName: "Casual Leave", Status: timeoff.StatusPending, StartDate: "2024-01-11", EndDate: "2024-01-11"},
		{LeaveTypeName: "Medical Leave", Status: timeoff.StatusApproved, StartDate: "2024-01-01", EndDate: "2024-01-02"},
	}

	d := report.Summarize(today, logs, requests, 4)

	assert.Equal(t, report.Today{Present: 2, Late: 2, OnLeave: 1, Total: 4, AttendanceRate: 50}, d.Today)

	require.Len(t, d.Trend, report.TrendDays)
	assert.Equal(t, generic.Date("2024-01-05"), d.Trend[0].Date)
	assert.Equal(t, today, d.Trend[6].Date)
	assert.Equal(t, "Thu", d.Trend[6].Day)
	assert.Equal(t, 1, d.Trend[5].Present)
	assert.Equal(t, 0, d.Trend[5].Late)

	assert.Equal(t, []report.ReasonCount{{Name: "Casual Leave", Value: 2}, {Name: "Medical Leave", Value: 1}}, d.AbsenceReasons)
}

func TestSummarize_NoUsers(t *testing.T) {
	d := report.Summarize(generic.DateOf(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)), nil, nil, 0)
	assert.Zero(t, d.Today.AttendanceRate)
	assert.NotNil(t, d.AbsenceReasons)
}
