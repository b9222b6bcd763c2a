package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/report"
)

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// RecordPunch records the caller's next punch.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req PunchRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	entry, err := h.Attendance.RecordPunch(r.Context(), id.UserID, req.Location)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// TodayPunches lists the caller's punches for today, most recent first.
func (h *Handler) TodayPunches(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	entries, err := h.Attendance.Today(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// ADMIN ATTENDANCE HANDLERS
// =============================================================================

// DailyView summarizes ?date= (default today) per user.
func (h *Handler) DailyView(w http.ResponseWriter, r *http.Request) {
	date := generic.DateOf(h.Clock.Now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := generic.ParseDate("date", raw)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		date = d
	}

	records, err := h.Attendance.DailyView(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if records == nil {
		records = []attendance.DailyRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ManualEntry adds a punch on a user's behalf.
func (h *Handler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	admin, _ := identityFrom(r.Context())

	var req ManualEntryRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.Attendance.ManualOverride(r.Context(), attendance.Override{
		AdminID: admin.UserID,
		UserID:  req.UserID,
		Kind:    attendance.Kind(req.Type),
		Date:    req.Date,
		Time:    req.Time,
		Reason:  req.Reason,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// DeleteLogEntry removes a punch. Unknown ids succeed.
func (h *Handler) DeleteLogEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Attendance.DeleteLogEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportAttendance streams ?start=&end= as CSV, or XLSX with ?format=xlsx.
func (h *Handler) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx", nil)
		return
	}

	rows, err := h.Exporter.Rows(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Render fully before writing headers so a failure can still be a 500.
	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = report.WriteXLSX(&buf, rows)
	} else {
		err = report.WriteCSV(&buf, rows)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(start, end, format)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
