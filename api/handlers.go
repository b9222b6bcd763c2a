/*
handlers.go - HTTP API handlers for the attendance & leave ledger

PURPOSE:
  Exposes the domain services via REST API. Handles HTTP request/response,
  JSON serialization and validation, and delegates to the domain packages.

ENDPOINTS:
  Auth (public):
    POST   /api/auth/register          Enroll a teacher account
    POST   /api/auth/login             Log in, get a bearer token

  Live (bearer header or ?token=):
    GET    /api/live                   Server-sent arrival/departure events

  Self service (any signed-in user):
    GET    /api/me                     Identity, punch state, unread count
    POST   /api/punches                Record next punch
    GET    /api/punches/today          Today's punches
    GET    /api/balances               Own balances (provisioned on read)
    POST   /api/leave-requests         Apply for leave
    GET    /api/leave-requests/mine    Own requests
    GET    /api/leave-types            Catalog
    GET    /api/notifications          Own inbox (admins: the ADMIN inbox)

  Admin:
    GET    /api/attendance/daily       Per-user summary of a day
    POST   /api/attendance/manual      Manual punch
    DELETE /api/attendance/{id}        Remove a punch
    GET    /api/attendance/export      CSV / XLSX download
    GET    /api/leave-requests         All requests (?status=pending)
    POST   /api/leave-requests/{id}/approve|reject
    POST   /api/leave-types            Add a type
    DELETE /api/leave-types/{id}       Remove a type
    GET    /api/users, /api/users/{id}, PUT /api/users/{id}
    POST   /api/users                  Enroll any role (admins included)
    POST   /api/users/{id}/reset-device
    GET    /api/stats                  Dashboard

ERROR HANDLING:
  Domain errors map to HTTP status in writeDomainError:
  - 400: Validation errors, invalid input
  - 401: Missing or bad credentials
  - 403: Not an admin, or account bound to another device
  - 404: Unknown id
  - 409: Request already decided
  - 422: Insufficient balance (body carries available/requested)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Bearer authentication, admin gate, locale
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/warp/edutime/auth"
	"github.com/warp/edutime/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Services

	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over the given services.
func NewHandler(svc Services) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{Services: svc, validate: v}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON body into dst and validates its tags. It writes the
// 400 response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: fields})
		return false
	}
	return true
}

// writeDomainError maps an error returned by a domain service to a status.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		balErr *generic.InsufficientBalanceError
		valErr *generic.ValidationError
		devErr *auth.DeviceMismatchError
	)
	switch {
	case errors.As(err, &balErr):
		available, requested := days(balErr.Available), days(balErr.Requested)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:     balErr.Error(),
			Available: &available,
			Requested: &requested,
		})
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   valErr.Error(),
			Details: map[string]string{valErr.Field: valErr.Message},
		})
	case errors.Is(err, generic.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, generic.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.As(err, &devErr):
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error:   devErr.Error(),
			Details: map[string]string{"userId": devErr.UserID},
		})
	case errors.Is(err, generic.ErrDeviceMismatch):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, generic.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}
