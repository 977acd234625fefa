package timesheet

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, caller *auth.Identity, dto CreateDTO) (*Entry, error)
	Decide(ctx context.Context, caller *auth.Identity, id int64, status Status) (*Entry, error)
	Mine(ctx context.Context, caller *auth.Identity, month string) ([]*Entry, error)
	Calendar(ctx context.Context, caller *auth.Identity, month string) ([]CalendarDay, error)
	Export(ctx context.Context, caller *auth.Identity, month string) ([]byte, error)
	Approval(ctx context.Context, caller *auth.Identity, month string) ([]*Entry, error)
	PendingCount(ctx context.Context, caller *auth.Identity) CountResponse
	LockStatus(ctx context.Context, month string) (*Lock, error)
}

type Service struct {
	repo      Repository
	holidays  HolidayCalendar
	publisher events.Publisher
	clock     clock.Clock
	location  *time.Location
	policy    auth.ReportingLinePolicy
}

func NewService(repo Repository, holidays HolidayCalendar, publisher events.Publisher, clk clock.Clock, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		holidays:  holidays,
		publisher: publisher,
		clock:     clk,
		location:  loc,
	}
}

func (s *Service) Create(ctx context.Context, caller *auth.Identity, dto CreateDTO) (*Entry, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	entry, err := s.submit(ctx, &Entry{
		EmployeeID: empID,
		WorkDate:   dto.WorkDate,
		Project:    dto.Project,
		Task:       dto.Task,
		Hours:      dto.Hours.Round(2),
	})
	if err != nil {
		logger.From(ctx).Info("timesheet entry rejected", "employee_id", empID, "work_date", dto.WorkDate, "error", err)
		return nil, err
	}
	return entry, nil
}

// RecordClockOut files the day's entry from a finished attendance record.
func (s *Service) RecordClockOut(ctx context.Context, employeeID int64, workDate, project, task string, workMinutes int) error {
	hours := HoursFromMinutes(workMinutes)
	if !ValidHours(hours) {
		return ErrInvalidHours
	}
	_, err := s.submit(ctx, &Entry{
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Project:    project,
		Task:       task,
		Hours:      hours,
	})
	return err
}

func (s *Service) submit(ctx context.Context, e *Entry) (*Entry, error) {
	month := e.WorkDate[:len(clock.MonthLayout)]
	lock, err := s.repo.GetLock(ctx, month)
	if err != nil {
		return nil, internal.NewInternalError("failed to read timesheet lock", err)
	}
	if lock.IsLocked {
		return nil, ErrMonthLocked
	}

	e.Status = StatusSubmitted
	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, ErrTimesheetExists) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to save timesheet", err)
	}
	return e, nil
}

// Decide approves or rejects a submitted entry. Nobody decides their own entry; managers only
// decide for direct reports.
func (s *Service) Decide(ctx context.Context, caller *auth.Identity, id int64, status Status) (*Entry, error) {
	if !caller.HasRole(auth.RoleManager, auth.RoleHR, auth.RoleAdmin) {
		return nil, internal.ErrForbidden
	}
	if status != StatusApproved && status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTimesheetNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to load timesheet", err)
	}
	owner, err := s.repo.GetOwner(ctx, entry.EmployeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load timesheet owner", err)
	}
	if err := s.policy.CanDecide(caller, auth.Subject{EmployeeID: owner.EmployeeID, ManagerID: owner.ManagerID}); err != nil {
		logger.From(ctx).Info("timesheet decision refused", "timesheet_id", id, "error", err)
		return nil, err
	}
	if entry.Status != StatusSubmitted {
		return nil, ErrAlreadyProcessed
	}

	decision := Decision{Status: status, ApprovedBy: caller.UserID, ApprovedAt: s.clock.Now().UTC()}
	ok, err := s.repo.Decide(ctx, id, decision)
	if err != nil {
		logger.From(ctx).Error("timesheet decision failed", "timesheet_id", id, "error", err)
		return nil, internal.NewInternalError("Timesheet decision failed", err)
	}
	if !ok {
		return nil, ErrAlreadyProcessed
	}

	entry.Status = status
	entry.ApprovedBy = &decision.ApprovedBy
	entry.ApprovedAt = &decision.ApprovedAt

	if owner.UserID != nil && s.publisher != nil {
		event := events.NewTimesheetDecidedEvent(id, *owner.UserID, entry.WorkDate, string(status))
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.From(ctx).Warn("failed to publish event", "event_type", event.EventType(), "error", err)
		}
	}
	return entry, nil
}

func (s *Service) Mine(ctx context.Context, caller *auth.Identity, month string) ([]*Entry, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if month, err = ParseMonthParam(month); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByMonth(ctx, empID, month)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch timesheets", err)
	}
	return rows, nil
}

func (s *Service) Calendar(ctx context.Context, caller *auth.Identity, month string) ([]CalendarDay, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if month, err = ParseMonthParam(month); err != nil {
		return nil, err
	}
	start, _ := clock.ParseMonth(month)

	entries, err := s.repo.ListByMonth(ctx, empID, month)
	if err != nil {
		return nil, internal.NewInternalError("Failed to build calendar", err)
	}
	shifts, err := s.repo.Shifts(ctx, empID, month)
	if err != nil {
		return nil, internal.NewInternalError("Failed to build calendar", err)
	}
	holidays := map[string]string{}
	if s.holidays != nil {
		if holidays, err = s.holidays.HolidaysInMonth(ctx, month); err != nil {
			return nil, internal.NewInternalError("Failed to build calendar", err)
		}
	}
	return BuildCalendar(start, entries, shifts, holidays, s.location), nil
}

func (s *Service) Export(ctx context.Context, caller *auth.Identity, month string) ([]byte, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if month, err = ParseMonthParam(month); err != nil {
		return nil, err
	}
	owner, err := s.repo.GetOwner(ctx, empID)
	if err != nil {
		return nil, internal.NewInternalError("Export failed", err)
	}
	entries, err := s.repo.ListByMonth(ctx, empID, month)
	if err != nil {
		return nil, internal.NewInternalError("Export failed", err)
	}
	data, err := BuildWorkbook(owner, month, entries)
	if err != nil {
		logger.From(ctx).Error("timesheet export failed", "employee_id", empID, "month", month, "error", err)
		return nil, internal.NewInternalError("Export failed", err)
	}
	return data, nil
}

func (s *Service) Approval(ctx context.Context, caller *auth.Identity, month string) ([]*Entry, error) {
	scope, err := teamScope(caller)
	if err != nil {
		return nil, err
	}
	if month, err = ParseMonthParam(month); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSubmitted(ctx, month, scope)
	if err != nil {
		return nil, internal.NewInternalError("Failed to fetch approvals", err)
	}
	return rows, nil
}

// PendingCount never fails on storage errors; the dashboard shows zero instead.
func (s *Service) PendingCount(ctx context.Context, caller *auth.Identity) CountResponse {
	scope, err := teamScope(caller)
	if err != nil {
		return CountResponse{}
	}
	n, err := s.repo.CountSubmitted(ctx, scope)
	if err != nil {
		logger.From(ctx).Error("pending timesheet count failed", "error", err)
		return CountResponse{}
	}
	return CountResponse{Count: n}
}

func (s *Service) LockStatus(ctx context.Context, month string) (*Lock, error) {
	month, err := ParseMonthParam(month)
	if err != nil {
		return nil, err
	}
	lock, err := s.repo.GetLock(ctx, month)
	if err != nil {
		return nil, internal.NewInternalError("failed to read timesheet lock", err)
	}
	return lock, nil
}

func teamScope(caller *auth.Identity) (*int64, error) {
	switch {
	case caller.IsPrivileged():
		return nil, nil
	case caller.HasRole(auth.RoleManager):
		empID, err := caller.RequireEmployee()
		if err != nil {
			return nil, err
		}
		return &empID, nil
	}
	return nil, internal.ErrForbidden
}
