package timesheet

import (
	"context"
	"strings"
	"time"

	"github.com/frahmantamala/hrms/internal"
	timesheetdm "github.com/frahmantamala/hrms/internal/core/datamodel/timesheet"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSubmitted Status = "Submitted"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
)

// ParseStatus accepts a decision status in any case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	}
	return "", ErrInvalidStatus
}

// ParseAction maps the manager route's approve|reject onto a status.
func ParseAction(action string) (Status, error) {
	switch strings.ToLower(action) {
	case "approve":
		return StatusApproved, nil
	case "reject":
		return StatusRejected, nil
	}
	return "", ErrInvalidAction
}

const (
	LockedBySystem = "SYSTEM"
	// LockedByManual marks a lock applied from the command line.
	LockedByManual = "MANUAL"
)

var maxHours = decimal.NewFromInt(24)

type Entry struct {
	ID           int64           `json:"id"`
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	WorkDate     string          `json:"work_date"`
	Project      string          `json:"project"`
	Task         string          `json:"task"`
	Hours        decimal.Decimal `json:"hours"`
	Status       Status          `json:"status"`
	ApprovedBy   *int64          `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Owner is the employee an entry belongs to.
type Owner struct {
	EmployeeID   int64
	Name         string
	Department   string
	Designation  string
	WorkLocation string
	UserID       *int64
	ManagerID    *int64
}

type Lock struct {
	Month    string     `json:"month"`
	IsLocked bool       `json:"is_locked"`
	LockedAt *time.Time `json:"locked_at,omitempty"`
	LockedBy string     `json:"locked_by,omitempty"`
}

// Shift is the attendance span shown next to an approved day.
type Shift struct {
	ClockIn  *time.Time
	ClockOut *time.Time
}

type Decision struct {
	Status     Status
	ApprovedBy int64
	ApprovedAt time.Time
}

type Repository interface {
	// Create returns ErrTimesheetExists when the employee already has an entry for the date.
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// Decide applies d only while the entry is still submitted and reports whether it did.
	Decide(ctx context.Context, id int64, d Decision) (bool, error)
	ListByMonth(ctx context.Context, employeeID int64, month string) ([]*Entry, error)
	// ListSubmitted returns submitted entries of a month with employee names; a nil managerID
	// means everyone.
	ListSubmitted(ctx context.Context, month string, managerID *int64) ([]*Entry, error)
	CountSubmitted(ctx context.Context, managerID *int64) (int64, error)
	GetOwner(ctx context.Context, employeeID int64) (*Owner, error)
	// Shifts maps work dates of the month to the employee's attendance span.
	Shifts(ctx context.Context, employeeID int64, month string) (map[string]Shift, error)
	// GetLock returns an unlocked Lock for months that were never locked.
	GetLock(ctx context.Context, month string) (*Lock, error)
	UpsertLock(ctx context.Context, lock Lock) error
}

// HolidayCalendar provides the public holidays of a month keyed by date.
type HolidayCalendar interface {
	HolidaysInMonth(ctx context.Context, month string) (map[string]string, error)
}

var (
	ErrTimesheetNotFound = internal.NewNotFoundError("Timesheet not found", internal.ErrCodeTimesheetNotFound)
	ErrTimesheetExists   = internal.NewConflictError("Timesheet already submitted for this date", internal.ErrCodeTimesheetExists)
	ErrMonthLocked       = internal.NewConflictError("Timesheet month is locked", internal.ErrCodeMonthLocked)
	ErrInvalidHours      = internal.NewValidationError("Hours must be greater than 0 and at most 24", internal.ErrCodeInvalidHours)
	ErrAlreadyProcessed  = internal.NewConflictError("Timesheet already processed", internal.ErrCodeAlreadyProcessed)
	ErrInvalidStatus     = internal.NewValidationError("Invalid status", internal.ErrCodeInvalidDecision)
	ErrInvalidAction     = internal.NewValidationError("Invalid action", internal.ErrCodeInvalidDecision)
	ErrInvalidMonth      = internal.NewValidationError("Month must be in YYYY-MM format", internal.ErrCodeInvalidMonth)
	ErrInvalidWorkDate   = internal.NewValidationError("work_date must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	ErrMissingFields     = internal.NewValidationError("work_date, project, task and hours are required", internal.ErrCodeMissingFields)
)

// ValidHours is the (0, 24] range an entry must fall in.
func ValidHours(h decimal.Decimal) bool {
	return h.IsPositive() && h.LessThanOrEqual(maxHours)
}

// HoursFromMinutes converts worked minutes to hours with two decimals.
func HoursFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).DivRound(decimal.NewFromInt(60), 2)
}

func FromDataModel(m *timesheetdm.Entry) *Entry {
	return &Entry{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		WorkDate:   m.WorkDate,
		Project:    m.Project,
		Task:       m.Task,
		Hours:      m.Hours,
		Status:     Status(m.Status),
		ApprovedBy: m.ApprovedBy,
		ApprovedAt: m.ApprovedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ToDataModel(e *Entry) *timesheetdm.Entry {
	return &timesheetdm.Entry{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		WorkDate:   e.WorkDate,
		Project:    e.Project,
		Task:       e.Task,
		Hours:      e.Hours,
		Status:     string(e.Status),
		ApprovedBy: e.ApprovedBy,
		ApprovedAt: e.ApprovedAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
