/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the ledger with realistic
	school data for demos. Each scenario enrolls staff, provisions their
	balances and optionally adds punches and leave requests.

AVAILABLE SCENARIOS:

	staff-room:   The four St. Mary's staff, default catalog, full balances
	busy-morning: staff-room plus today's arrivals (early, on time, late),
	              an approved leave covering today and a pending request

HOW SCENARIOS WORK:
 1. Reset the ledger (clear all collections)
 2. Seed users (password "password123", no device bound yet)
 3. Provision balances from the default catalog
 4. Optionally seed punches and leave requests dated relative to today

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-morning"}

NOTE:

	Scenarios reset the ledger. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/warp/edutime/attendance"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/personnel"
	"github.com/warp/edutime/timeoff"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "staff-room",
		Name:        "Staff Room",
		Description: "Four staff members with default leave balances",
	},
	{
		ID:          "busy-morning",
		Name:        "Busy Morning",
		Description: "Staff room plus today's arrivals, one person on leave and a pending request",
	},
}

// demoStaff mirrors the St. Mary's directory.
var demoStaff = []personnel.User{
	{ID: "3", Name: "Dr. Albert Smith", Email: "albert@stmarys.edu", Department: "Science (Physics)", Position: "Senior Faculty", Role: personnel.RoleTeacher, EmployeeCode: "EMP-003"},
	{ID: "22", Name: "Mrs. Keith Jones", Email: "keith@stmarys.edu", Department: "Mathematics", Position: "Class Teacher (Grade 10)", Role: personnel.RoleTeacher, EmployeeCode: "EMP-022"},
	{ID: "47", Name: "Mr. Mark Wilson", Email: "principal@stmarys.edu", Department: "Administration", Position: "Principal", Role: personnel.RoleTeacher, EmployeeCode: "EMP-047"},
	{ID: "52", Name: "Ms. Sarah Lee", Email: "sarah@stmarys.edu", Department: "Language (English)", Position: "Assistant Teacher", Role: personnel.RoleTeacher, EmployeeCode: "EMP-052"},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// ErrUnknownScenario is returned by Load for an unregistered scenario id.
var ErrUnknownScenario = errors.New("unknown scenario")

// LoadScenario resets the ledger and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Load(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// Load resets the ledger and loads the scenario with the given id.
func (h *Handler) Load(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "staff-room":
		load = h.loadStaffRoomScenario
	case "busy-morning":
		load = h.loadBusyMorningScenario
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = ""

	if err := h.Ledger.Reset(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	if err := load(ctx); err != nil {
		return err
	}
	h.currentScenario = id
	return nil
}

// ResetLedger clears all data.
func (h *Handler) ResetLedger(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Ledger.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset ledger", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStaffRoomScenario(ctx context.Context) error {
	hash, err := personnel.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	verified := h.Clock.Now().UTC()

	staff := make([]personnel.User, len(demoStaff))
	for i, u := range demoStaff {
		u.PasswordHash = hash
		u.VerifiedAt = &verified
		staff[i] = u
	}
	if err := h.Users.Seed(ctx, staff); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	for _, u := range staff {
		if _, err := h.Balances.EnsureBalances(ctx, u.ID); err != nil {
			return fmt.Errorf("provision %s: %w", u.ID, err)
		}
	}
	return nil
}

func (h *Handler) loadBusyMorningScenario(ctx context.Context) error {
	if err := h.loadStaffRoomScenario(ctx); err != nil {
		return err
	}
	today := generic.DateOf(h.Clock.Now())

	// Most recent first, like the stored log.
	punches := []attendance.LogEntry{
		{UserID: "52", Date: today, Time: "08:05", Kind: attendance.PunchIn, Location: "Main Gate"},
		{UserID: "22", Date: today, Time: "08:20", Kind: attendance.PunchIn, Location: "Staff Room"},
		{UserID: "3", Date: today, Time: "07:58", Kind: attendance.PunchIn, Location: "Science Block"},
		{UserID: "3", Date: today.AddDays(-1), Time: "15:02", Kind: attendance.PunchOut, Location: "Science Block"},
		{UserID: "3", Date: today.AddDays(-1), Time: "08:10", Kind: attendance.PunchIn, Location: "Science Block"},
	}
	if err := h.Attendance.Seed(ctx, punches); err != nil {
		return fmt.Errorf("seed punches: %w", err)
	}

	sick, err := h.Leave.Submit(ctx, timeoff.Submission{
		UserID:    "47",
		LeaveType: "Medical Leave",
		StartDate: today.String(),
		EndDate:   today.AddDays(1).String(),
		Reason:    "Flu",
	})
	if err != nil {
		return fmt.Errorf("submit medical leave: %w", err)
	}
	if _, err := h.Leave.Decide(ctx, sick.ID, true, "scenario"); err != nil {
		return fmt.Errorf("approve medical leave: %w", err)
	}

	_, err = h.Leave.Submit(ctx, timeoff.Submission{
		UserID:    "52",
		LeaveType: "Casual Leave",
		StartDate: today.AddDays(3).String(),
		EndDate:   today.AddDays(4).String(),
		Reason:    "Family function",
	})
	if err != nil {
		return fmt.Errorf("submit casual leave: %w", err)
	}
	return nil
}
