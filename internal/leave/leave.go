package leave

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
	leavedm "github.com/frahmantamala/hrms/internal/core/datamodel/leave"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Request struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employee_id"`
	EmployeeName string     `json:"employee_name,omitempty"`
	FromDate     string     `json:"from_date"`
	ToDate       string     `json:"to_date"`
	LeaveType    string     `json:"leave_type"`
	Reason       string     `json:"reason"`
	Status       Status     `json:"status"`
	Days         int        `json:"days"`
	ApprovedBy   *int64     `json:"approved_by,omitempty"`
	ApprovedRole *string    `json:"approved_role,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Type struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	AnnualQuota int    `json:"annual_quota"`
}

type Balance struct {
	LeaveType   string `json:"leave_type"`
	Name        string `json:"name"`
	AnnualQuota int    `json:"annual_quota"`
	Used        int    `json:"used"`
	Balance     int    `json:"balance"`
}

// Requester is the employee behind a request plus what decisions and notifications need.
type Requester struct {
	EmployeeID    int64
	Name          string
	UserID        *int64
	ManagerID     *int64
	ManagerUserID *int64
}

// Decision is the terminal write applied to a pending request.
type Decision struct {
	Status       Status
	ApprovedBy   int64
	ApprovedRole string
	ApprovedAt   time.Time
}

type Repository interface {
	GetType(ctx context.Context, code string) (*Type, error)
	ListTypes(ctx context.Context) ([]Type, error)
	GetRequester(ctx context.Context, employeeID int64) (*Requester, error)
	// Create inserts a pending request unless it overlaps a pending or approved one of the same
	// employee, in which case it returns ErrOverlappingLeave.
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	// Decide applies d only while the request is still pending and reports whether it did.
	Decide(ctx context.Context, id int64, d Decision) (bool, error)
	// ListByEmployee returns newest-first requests; an empty leaveType means every type.
	ListByEmployee(ctx context.Context, employeeID int64, leaveType string) ([]*Request, error)
	// ListPending returns pending requests with employee names; a nil managerID means everyone.
	ListPending(ctx context.Context, managerID *int64) ([]*Request, error)
	// CountOnLeave counts approved requests covering date; a nil managerID means everyone.
	CountOnLeave(ctx context.Context, date string, managerID *int64) (int64, error)
}

var (
	ErrMissingFields    = internal.NewValidationError("from_date, to_date and leave_type are required", internal.ErrCodeMissingFields)
	ErrInvalidDateRange = internal.NewValidationError("Invalid date range", internal.ErrCodeInvalidDateRange)
	ErrUnknownType      = internal.NewValidationError("Unknown leave type", internal.ErrCodeUnknownLeaveType)
	ErrOverlappingLeave = internal.NewConflictError("Leave already applied for selected dates", internal.ErrCodeOverlappingLeave)
	ErrLeaveNotFound    = internal.NewNotFoundError("Leave not found", internal.ErrCodeLeaveNotFound)
	ErrAlreadyProcessed = internal.NewConflictError("Leave already processed", internal.ErrCodeAlreadyProcessed)
	ErrInvalidDecision  = internal.NewValidationError("Invalid decision", internal.ErrCodeInvalidDecision)
)

// DayCount is the inclusive number of calendar days between from and to.
func DayCount(from, to string) int {
	f, err := clock.ParseDate(from)
	if err != nil {
		return 0
	}
	t, err := clock.ParseDate(to)
	if err != nil {
		return 0
	}
	if t.Before(f) {
		return 0
	}
	return int(t.Sub(f).Hours()/24) + 1
}

// Overlaps is the inclusive interval test used for the one-active-leave-per-day rule.
func Overlaps(aFrom, aTo, bFrom, bTo string) bool {
	return aFrom <= bTo && aTo >= bFrom
}

func FromDataModel(m *leavedm.Request) *Request {
	return &Request{
		ID:           m.ID,
		EmployeeID:   m.EmployeeID,
		FromDate:     m.FromDate,
		ToDate:       m.ToDate,
		LeaveType:    m.LeaveType,
		Reason:       m.Reason,
		Status:       Status(m.Status),
		Days:         DayCount(m.FromDate, m.ToDate),
		ApprovedBy:   m.ApprovedBy,
		ApprovedRole: m.ApprovedRole,
		ApprovedAt:   m.ApprovedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToDataModel(r *Request) *leavedm.Request {
	return &leavedm.Request{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		FromDate:     r.FromDate,
		ToDate:       r.ToDate,
		LeaveType:    r.LeaveType,
		Reason:       r.Reason,
		Status:       string(r.Status),
		ApprovedBy:   r.ApprovedBy,
		ApprovedRole: r.ApprovedRole,
		ApprovedAt:   r.ApprovedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
