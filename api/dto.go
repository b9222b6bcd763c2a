/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the stored collections from the external contract: password hashes never
  leave the server and decimal day amounts are sent as numbers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required, email, min). Domain rules (duplicate email, catalog lookups,
  balances) stay in the domain packages.

SEE ALSO:
  - handlers.go: decode validates these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/edutime/auth"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/notify"
	"github.com/warp/edutime/personnel"
	"github.com/warp/edutime/timeoff"
)

// =============================================================================
// AUTH
// =============================================================================

// RegisterRequest enrolls a new staff account.
type RegisterRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Mobile       string `json:"mobile"`
	Role         string `json:"role" validate:"required,oneof=TEACHER ADMIN"`
	AdminSubRole string `json:"adminSubRole"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	EmployeeCode string `json:"employeeCode"`
	OfficeID     string `json:"officeId"`
}

// RegisterResponse returns the device token bound at enrollment. The client
// must keep it to log in again from the same device.
type RegisterResponse struct {
	User        UserDTO `json:"user"`
	DeviceToken string  `json:"deviceToken"`
}

type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=TEACHER ADMIN"`
	DeviceToken string `json:"deviceToken"`
}

// MeDTO describes the caller.
type MeDTO struct {
	auth.Identity
	User                *UserDTO `json:"user,omitempty"`
	PunchedIn           bool     `json:"punchedIn"`
	UnreadNotifications int      `json:"unreadNotifications"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Mobile       string     `json:"mobile,omitempty"`
	Department   string     `json:"department"`
	Position     string     `json:"position"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         string     `json:"role"`
	AdminSubRole string     `json:"adminSubRole,omitempty"`
	EmployeeCode string     `json:"employeeCode,omitempty"`
	OfficeID     string     `json:"officeId,omitempty"`
	DeviceBound  bool       `json:"deviceBound"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty"`
}

func toUserDTO(u personnel.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Mobile:       u.Mobile,
		Department:   u.Department,
		Position:     u.Position,
		Avatar:       u.Avatar,
		Role:         string(u.Role),
		AdminSubRole: string(u.AdminSubRole),
		EmployeeCode: u.EmployeeCode,
		OfficeID:     u.OfficeID,
		DeviceBound:  u.DeviceID != "",
		VerifiedAt:   u.VerifiedAt,
	}
}

// UpdateUserRequest edits a profile.
type UpdateUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// PunchRequest records the caller's next punch. Location falls back to the
// configured default when empty.
type PunchRequest struct {
	Location string `json:"location"`
}

// ManualEntryRequest adds a punch on someone's behalf.
type ManualEntryRequest struct {
	UserID string `json:"userId" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Date   string `json:"date" validate:"required"`
	Time   string `json:"time" validate:"required"`
	Reason string `json:"reason"`
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveTypeDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DefaultBalance float64 `json:"defaultBalance"`
	Icon           string  `json:"icon"`
	Color          string  `json:"color"`
}

func toLeaveTypeDTO(t timeoff.LeaveType) LeaveTypeDTO {
	return LeaveTypeDTO{
		ID:             t.ID,
		Name:           t.Name,
		DefaultBalance: days(t.DefaultBalance),
		Icon:           t.Icon,
		Color:          t.Color,
	}
}

// CreateLeaveTypeRequest adds a catalog entry.
type CreateLeaveTypeRequest struct {
	Name           string  `json:"name" validate:"required"`
	DefaultBalance float64 `json:"defaultBalance" validate:"gte=0"`
	Icon           string  `json:"icon"`
	Color          string  `json:"color"`
}

// SubmitLeaveRequest applies for leave. LeaveType is a catalog id or name.
type SubmitLeaveRequest struct {
	LeaveType      string `json:"leaveType" validate:"required"`
	StartDate      string `json:"startDate" validate:"required"`
	EndDate        string `json:"endDate"`
	IsHalfDay      bool   `json:"isHalfDay"`
	Reason         string `json:"reason"`
	AttachmentName string `json:"attachmentName"`
}

type LeaveRequestDTO struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	UserName       string       `json:"userName"`
	LeaveTypeID    string       `json:"leaveTypeId"`
	LeaveTypeName  string       `json:"leaveTypeName"`
	StartDate      generic.Date `json:"startDate"`
	EndDate        generic.Date `json:"endDate"`
	IsHalfDay      bool         `json:"isHalfDay"`
	Days           float64      `json:"days"`
	Reason         string       `json:"reason"`
	AttachmentName string       `json:"attachmentName,omitempty"`
	Status         string       `json:"status"`
	AppliedAt      time.Time    `json:"appliedAt"`
	DecidedBy      string       `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time   `json:"decidedAt,omitempty"`
}

func toLeaveRequestDTO(r timeoff.LeaveRequest) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:             r.ID,
		UserID:         r.UserID,
		UserName:       r.UserName,
		LeaveTypeID:    r.LeaveTypeID,
		LeaveTypeName:  r.LeaveTypeName,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		IsHalfDay:      r.IsHalfDay,
		Days:           days(r.Days),
		Reason:         r.Reason,
		AttachmentName: r.AttachmentName,
		Status:         string(r.Status),
		AppliedAt:      r.AppliedAt,
		DecidedBy:      r.DecidedBy,
		DecidedAt:      r.DecidedAt,
	}
}

func toLeaveRequestDTOs(rs []timeoff.LeaveRequest) []LeaveRequestDTO {
	out := make([]LeaveRequestDTO, len(rs))
	for i, r := range rs {
		out[i] = toLeaveRequestDTO(r)
	}
	return out
}

// BalancesDTO maps leave type names to remaining days.
type BalancesDTO struct {
	UserID   string             `json:"userId"`
	Balances map[string]float64 `json:"balances"`
}

func toBalancesDTO(userID string, b generic.Balances) BalancesDTO {
	out := BalancesDTO{UserID: userID, Balances: make(map[string]float64, len(b))}
	for name, v := range b {
		out.Balances[name] = days(v)
	}
	return out
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type NotificationsResponse struct {
	Items  []notify.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response. Available and
// Requested are set for insufficient balance errors.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Details   any      `json:"details,omitempty"`
	Available *float64 `json:"available,omitempty"`
	Requested *float64 `json:"requested,omitempty"`
}

func days(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
