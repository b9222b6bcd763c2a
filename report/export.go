// Package report turns the ledger into exports and dashboard figures.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/generic"
	"github.com/xuri/excelize/v2"
)

// Header is the first row of every attendance export.
var Header = []string{"Date", "Name", "Department", "Time", "Type", "Status", "Location"}

// Row is one exported punch.
type Row struct {
	Date       string
	Name       string
	Department string
	Time       string
	Type       string
	Status     string
	Location   string
}

func (r Row) cells() []string {
	return []string{r.Date, r.Name, r.Department, r.Time, r.Type, r.Status, r.Location}
}

// EntrySource lists punches in a date range. *attendance.Engine
// implements it.
type EntrySource interface {
	Entries(ctx context.Context, from, to generic.Date) ([]attendance.LogEntry, error)
}

type Exporter struct {
	source EntrySource
}

func NewExporter(source EntrySource) *Exporter {
	return &Exporter{source: source}
}

// Rows returns the punches dated within [start, end], in stored order.
// An empty range is a NotFoundError.
func (x *Exporter) Rows(ctx context.Context, start, end string) ([]Row, error) {
	from, err := generic.ParseDate("start", start)
	if err != nil {
		return nil, err
	}
	to, err := generic.ParseDate("end", end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, generic.Invalid("end", "must not be before start")
	}

	entries, err := x.source.Entries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &generic.NotFoundError{Kind: "attendance records", ID: fmt.Sprintf("%s..%s", from, to)}
	}

	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Date:       e.Date.String(),
			Name:       e.Name,
			Department: e.Department,
			Time:       e.Time.String(),
			Type:       string(e.Kind),
			Status:     string(e.Status),
			Location:   e.Location,
		}
	}
	return rows, nil
}

// FileName is the suggested download name for an export.
func FileName(start, end, ext string) string {
	return fmt.Sprintf("school_attendance_%s_to_%s.%s", start, end, ext)
}

// WriteCSV writes Header and rows. Fields are quoted only when they need
// it.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetName is the worksheet holding an XLSX export.
const SheetName = "Attendance"

// WriteXLSX writes Header and rows to a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := r.cells()
		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "G", 18); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
