package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/edutime/timeoff"
)

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// MyBalances returns the caller's balances, provisioning missing types.
func (h *Handler) MyBalances(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	h.writeBalances(w, r, id.UserID)
}

// UserBalances returns any user's balances.
func (h *Handler) UserBalances(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := h.Users.Get(r.Context(), userID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeBalances(w, r, userID)
}

func (h *Handler) writeBalances(w http.ResponseWriter, r *http.Request, userID string) {
	balances, err := h.Balances.EnsureBalances(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesDTO(userID, balances))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// SubmitLeave applies for leave on behalf of the caller.
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req SubmitLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	lr, err := h.Leave.Submit(r.Context(), timeoff.Submission{
		UserID:         id.UserID,
		LeaveType:      req.LeaveType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsHalfDay:      req.IsHalfDay,
		Reason:         req.Reason,
		AttachmentName: req.AttachmentName,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(*lr))
}

// MyLeaveRequests lists the caller's requests, newest first.
func (h *Handler) MyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	h.writeLeaveRequests(w, r, timeoff.Filter{UserID: id.UserID})
}

// ListLeaveRequests lists every request, optionally filtered by ?status=.
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	var f timeoff.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := parseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "status must be pending, approved or rejected", nil)
			return
		}
		f.Status = status
	}
	h.writeLeaveRequests(w, r, f)
}

func (h *Handler) writeLeaveRequests(w http.ResponseWriter, r *http.Request, f timeoff.Filter) {
	requests, err := h.Leave.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(requests))
}

func parseStatus(s string) (timeoff.RequestStatus, bool) {
	for _, st := range []timeoff.RequestStatus{timeoff.StatusPending, timeoff.StatusApproved, timeoff.StatusRejected} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// ApproveRequest approves a pending request.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// RejectRequest rejects a pending request. The debited days stay debited.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	admin, _ := identityFrom(r.Context())

	lr, err := h.Leave.Decide(r.Context(), chi.URLParam(r, "id"), approve, admin.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*lr))
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

// ListLeaveTypes returns the catalog.
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dtos := make([]LeaveTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = toLeaveTypeDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddLeaveType appends a type to the catalog.
func (h *Handler) AddLeaveType(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveTypeRequest
	if !h.decode(w, r, &req) {
		return
	}

	lt, err := h.Catalog.AddType(r.Context(), timeoff.NewLeaveType{
		Name:           req.Name,
		DefaultBalance: decimal.NewFromFloat(req.DefaultBalance),
		Icon:           req.Icon,
		Color:          req.Color,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveTypeDTO(*lt))
}

// RemoveLeaveType deletes a type. Unknown ids succeed.
func (h *Handler) RemoveLeaveType(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.RemoveType(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
