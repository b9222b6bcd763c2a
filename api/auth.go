package api

import (
	"net/http"

	"github.com/warp/edutime/auth"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/notify"
	"github.com/warp/edutime/personnel"
)

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register enrolls a teacher account and returns its device token.
// Administrators are enrolled by another administrator through EnrollUser.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if personnel.Role(req.Role) != personnel.RoleTeacher {
		writeError(w, http.StatusForbidden, "Administrator accounts are created by an administrator", nil)
		return
	}
	h.enroll(w, r, req)
}

// EnrollUser enrolls an account of any role on an administrator's behalf.
func (h *Handler) EnrollUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.enroll(w, r, req)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request, req RegisterRequest) {
	u, err := h.Users.Enroll(r.Context(), personnel.Enrollment{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Mobile:       req.Mobile,
		Role:         personnel.Role(req.Role),
		AdminSubRole: personnel.AdminSubRole(req.AdminSubRole),
		Department:   req.Department,
		Position:     req.Position,
		EmployeeCode: req.EmployeeCode,
		OfficeID:     req.OfficeID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{User: toUserDTO(*u), DeviceToken: u.DeviceID})
}

// Login verifies credentials and the device binding.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.Auth.Login(r.Context(), req.Email, req.Password, personnel.Role(req.Role), req.DeviceToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Me describes the caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	ctx := r.Context()

	me := MeDTO{Identity: id}
	u, err := h.Users.Get(ctx, id.UserID)
	switch {
	case err == nil:
		dto := toUserDTO(*u)
		me.User = &dto
	case !generic.IsNotFound(err):
		writeDomainError(w, r, err)
		return
	}

	if me.PunchedIn, err = h.Attendance.IsPunchedIn(ctx, id.UserID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if me.UnreadNotifications, err = h.Notifications.UnreadCount(ctx, inbox(id)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// inbox is the notification target an identity reads. Administrators share
// the ADMIN inbox.
func inbox(id auth.Identity) string {
	if id.IsAdmin() {
		return notify.AdminTarget
	}
	return id.UserID
}
