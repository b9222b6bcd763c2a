package timeoff

import (
	"context"
	"sort"
	"strings"

	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/i18n"
	"github.com/warp/edutime/notify"
	"github.com/warp/edutime/personnel"
)

// =============================================================================
// WORKFLOW - Submit and decide leave requests
// =============================================================================

// Submission is the input of Workflow.Submit. LeaveType names a catalog
// entry by id or by name. EndDate is ignored for half-day requests.
type Submission struct {
	UserID         string
	LeaveType      string
	StartDate      string
	EndDate        string
	IsHalfDay      bool
	Reason         string
	AttachmentName string
}

type Workflow struct {
	ledger   *generic.Ledger
	catalog  *Catalog
	notifier notify.Pusher
	clock    generic.Clock
}

func NewWorkflow(ledger *generic.Ledger, catalog *Catalog, notifier notify.Pusher, clock generic.Clock) *Workflow {
	return &Workflow{ledger: ledger, catalog: catalog, notifier: notifier, clock: clock}
}

// =============================================================================
// SUBMIT - Validate, check balance, record, debit
// =============================================================================

// Submit records a pending request and debits the balance immediately.
//
// The request write and the debit run in one ledger Update. On a TxStore
// they commit together; on a plain Store a failure between the two writes
// leaves the request recorded without the debit.
//
// The debit is never refunded, not even when the request is rejected.
func (w *Workflow) Submit(ctx context.Context, in Submission) (*LeaveRequest, error) {
	start, end, err := in.dates()
	if err != nil {
		return nil, err
	}
	days := RequestedDays(start, end, in.IsHalfDay)

	var req LeaveRequest
	err = w.ledger.Update(ctx, func(s generic.Store) error {
		user, err := personnel.Lookup(ctx, s, in.UserID)
		if err != nil {
			return err
		}
		types, err := w.catalog.listLocked(ctx, s)
		if err != nil {
			return err
		}
		lt, ok := find(types, in.LeaveType)
		if !ok {
			return generic.Invalid("leaveType", "unknown leave type %q", in.LeaveType)
		}

		balances, err := ensureLocked(ctx, s, user.ID, types)
		if err != nil {
			return err
		}
		available := balances[lt.Name]
		if days.GreaterThan(available) {
			return &generic.InsufficientBalanceError{
				UserID:    user.ID,
				LeaveType: lt.Name,
				Available: available,
				Requested: days,
			}
		}

		requests, err := generic.LoadList[LeaveRequest](ctx, s, generic.KeyLeaveRequests)
		if err != nil {
			return err
		}
		req = LeaveRequest{
			ID:             uniqueRequestID(requests),
			UserID:         user.ID,
			UserName:       user.Name,
			LeaveTypeID:    lt.ID,
			LeaveTypeName:  lt.Name,
			StartDate:      start,
			EndDate:        end,
			IsHalfDay:      in.IsHalfDay,
			Days:           days,
			Reason:         strings.TrimSpace(in.Reason),
			AttachmentName: in.AttachmentName,
			Status:         StatusPending,
			AppliedAt:      w.clock.Now().UTC(),
		}
		if err := generic.SaveJSON(ctx, s, generic.KeyLeaveRequests, append([]LeaveRequest{req}, requests...)); err != nil {
			return err
		}

		balances[lt.Name] = available.Sub(days)
		return generic.SaveJSON(ctx, s, generic.BalanceKey(user.ID), balances)
	})
	if err != nil {
		return nil, err
	}

	notify.Send(ctx, w.notifier, notify.AdminTarget, notify.Info, i18n.LeaveRequested, map[string]any{
		"Name": req.UserName,
		"Days": req.Days.String(),
		"Type": req.LeaveTypeName,
	})
	return &req, nil
}

func (in Submission) dates() (start, end generic.Date, err error) {
	start, err = generic.ParseDate("startDate", in.StartDate)
	if err != nil {
		return "", "", err
	}
	if in.IsHalfDay {
		return start, start, nil
	}
	end, err = generic.ParseDate("endDate", in.EndDate)
	if err != nil {
		return "", "", err
	}
	if end.Before(start) {
		return "", "", generic.Invalid("endDate", "must not be before startDate")
	}
	return start, end, nil
}

func uniqueRequestID(existing []LeaveRequest) string {
	for {
		id := "LV-" + generic.ShortCode(6)
		taken := false
		for _, r := range existing {
			if r.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// =============================================================================
// DECIDE - Pending -> Approved | Rejected, exactly once
// =============================================================================

// Decide approves or rejects a pending request on behalf of adminID.
// Balances are not touched: a rejected request keeps its debit.
func (w *Workflow) Decide(ctx context.Context, id string, approve bool, adminID string) (*LeaveRequest, error) {
	var decided LeaveRequest
	err := w.ledger.Update(ctx, func(s generic.Store) error {
		requests, err := generic.LoadList[LeaveRequest](ctx, s, generic.KeyLeaveRequests)
		if err != nil {
			return err
		}
		for i := range requests {
			if requests[i].ID != id {
				continue
			}
			if requests[i].Status != StatusPending {
				return &generic.InvalidStateError{ID: id, Status: string(requests[i].Status)}
			}
			now := w.clock.Now().UTC()
			requests[i].Status = StatusRejected
			if approve {
				requests[i].Status = StatusApproved
			}
			requests[i].DecidedBy = adminID
			requests[i].DecidedAt = &now
			decided = requests[i]
			return generic.SaveJSON(ctx, s, generic.KeyLeaveRequests, requests)
		}
		return &generic.NotFoundError{Kind: "leave request", ID: id}
	})
	if err != nil {
		return nil, err
	}

	msg, category := i18n.LeaveRejected, notify.Warning
	if approve {
		msg, category = i18n.LeaveApproved, notify.Success
	}
	notify.Send(ctx, w.notifier, decided.UserID, category, msg, map[string]any{
		"Type":  decided.LeaveTypeName,
		"ID":    decided.ID,
		"Start": decided.StartDate.String(),
		"End":   decided.EndDate.String(),
	})
	return &decided, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Filter narrows List. Zero fields match everything.
type Filter struct {
	UserID string
	Status RequestStatus
}

// List returns matching requests, most recently applied first.
func (w *Workflow) List(ctx context.Context, f Filter) ([]LeaveRequest, error) {
	var out []LeaveRequest
	err := w.ledger.View(ctx, func(s generic.Store) error {
		all, err := generic.LoadList[LeaveRequest](ctx, s, generic.KeyLeaveRequests)
		if err != nil {
			return err
		}
		out = make([]LeaveRequest, 0, len(all))
		for _, r := range all {
			if f.UserID != "" && r.UserID != f.UserID {
				continue
			}
			if f.Status != "" && r.Status != f.Status {
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

// Get returns one request.
func (w *Workflow) Get(ctx context.Context, id string) (*LeaveRequest, error) {
	all, err := w.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &generic.NotFoundError{Kind: "leave request", ID: id}
}
