// Package timeoff implements the leave side of the ledger: the leave type
// catalog, per-user balance provisioning and the request workflow.
package timeoff

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/edutime/generic"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveType is one catalog entry. Balances are keyed by Name.
type LeaveType struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DefaultBalance decimal.Decimal `json:"defaultBalance"`
	Icon           string          `json:"icon"`
	Color          string          `json:"color"`
}

// DefaultLeaveTypes seed an empty catalog.
var DefaultLeaveTypes = []LeaveType{
	{ID: "lt-1", Name: "Annual Leave", DefaultBalance: generic.NewDays(22), Icon: "Sun", Color: "orange"},
	{ID: "lt-2", Name: "Medical Leave", DefaultBalance: generic.NewDays(12), Icon: "Stethoscope", Color: "blue"},
	{ID: "lt-3", Name: "Casual Leave", DefaultBalance: generic.NewDays(8), Icon: "Coffee", Color: "emerald"},
	{ID: "lt-4", Name: "Sabbatical", DefaultBalance: generic.NewDays(1), Icon: "Award", Color: "purple"},
	{ID: "lt-5", Name: "Professional Dev", DefaultBalance: generic.NewDays(5), Icon: "Palette", Color: "rose"},
	{ID: "lt-6", Name: "Duty Leave", DefaultBalance: generic.NewDays(10), Icon: "Briefcase", Color: "blue"},
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

// LeaveRequest is one application. LeaveTypeName is kept for display after
// the type is removed from the catalog.
type LeaveRequest struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	UserName       string          `json:"userName"`
	LeaveTypeID    string          `json:"leaveTypeId"`
	LeaveTypeName  string          `json:"leaveTypeName"`
	StartDate      generic.Date    `json:"startDate"`
	EndDate        generic.Date    `json:"endDate"`
	IsHalfDay      bool            `json:"isHalfDay"`
	Days           decimal.Decimal `json:"days"`
	Reason         string          `json:"reason"`
	AttachmentName string          `json:"attachmentName,omitempty"`
	Status         RequestStatus   `json:"status"`
	AppliedAt      time.Time       `json:"appliedAt"`
	DecidedBy      string          `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time      `json:"decidedAt,omitempty"`
}

// Covers reports whether d falls within the requested range.
func (r LeaveRequest) Covers(d generic.Date) bool {
	return d.Within(r.StartDate, r.EndDate)
}

// RequestedDays is the amount a request debits: half a day, or the
// inclusive span from start to end.
func RequestedDays(start, end generic.Date, halfDay bool) decimal.Decimal {
	if halfDay {
		return generic.HalfDay
	}
	return generic.NewDays(generic.InclusiveDaySpan(start, end))
}
