package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/edutime/personnel"
)

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users, or those matching ?q= by name or department.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*u))
}

// UpdateUser edits name, department and position.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.Users.UpdateProfile(r.Context(), chi.URLParam(r, "id"), personnel.ProfileUpdate{
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*u))
}

// ResetDevice clears a user's device binding.
func (h *Handler) ResetDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.ResetDevice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns today's counts, the weekly trend and absence reasons.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Stats.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
