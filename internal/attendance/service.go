package attendance

import (
	"context"
	"errors"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/pkg/logger"
)

const historyLimit = 30

type ServiceAPI interface {
	ClockIn(ctx context.Context, caller *auth.Identity, dto ClockInDTO) (*Record, error)
	StartBreak(ctx context.Context, caller *auth.Identity) (*Record, error)
	EndBreak(ctx context.Context, caller *auth.Identity) (*Record, error)
	ClockOut(ctx context.Context, caller *auth.Identity, dto ClockOutDTO) (*Record, error)
	Today(ctx context.Context, caller *auth.Identity) (TodayStatus, error)
	History(ctx context.Context, caller *auth.Identity) ([]HistoryEntry, error)
}

type Service struct {
	repo       Repository
	timesheets TimesheetRecorder
	publisher  events.Publisher
	clock      clock.Clock
}

func NewService(repo Repository, timesheets TimesheetRecorder, publisher events.Publisher, clk clock.Clock) *Service {
	return &Service{
		repo:       repo,
		timesheets: timesheets,
		publisher:  publisher,
		clock:      clk,
	}
}

func (s *Service) today() string {
	return clock.FormatDate(s.clock.Now())
}

// ClockIn always succeeds for an employee: it creates today's record or reopens it.
func (s *Service) ClockIn(ctx context.Context, caller *auth.Identity, dto ClockInDTO) (*Record, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	date := clock.FormatDate(now)
	loc := Location{Latitude: dto.Latitude, Longitude: dto.Longitude, Accuracy: dto.Accuracy}

	// one retry covers a concurrent first clock-in winning the insert
	for attempt := 0; attempt < 2; attempt++ {
		rec, err := s.repo.GetByDate(ctx, empID, date)
		switch {
		case errors.Is(err, ErrRecordNotFound):
			rec = &Record{EmployeeID: empID, LogDate: date}
			rec.ClockInAt(now, loc)
			err = s.repo.Create(ctx, rec)
			if errors.Is(err, ErrRecordExists) {
				continue
			}
		case err == nil:
			from := rec.Status
			rec.ClockInAt(now, loc)
			var ok bool
			ok, err = s.repo.Update(ctx, rec, from)
			if err == nil && !ok {
				continue
			}
		}
		if err != nil {
			logger.From(ctx).Error("clock-in failed", "employee_id", empID, "error", err)
			return nil, internal.NewInternalError("failed to clock in", err)
		}

		s.publish(ctx, events.NewClockedInEvent(caller.UserID, empID, date))
		return rec, nil
	}
	return nil, internal.NewInternalError("failed to clock in", errors.New("attendance record changed concurrently"))
}

func (s *Service) StartBreak(ctx context.Context, caller *auth.Identity) (*Record, error) {
	return s.transition(ctx, caller, ErrInvalidBreakStart, func(r *Record) error {
		return r.StartBreakAt(s.clock.Now())
	})
}

func (s *Service) EndBreak(ctx context.Context, caller *auth.Identity) (*Record, error) {
	return s.transition(ctx, caller, ErrInvalidBreakEnd, func(r *Record) error {
		return r.EndBreakAt(s.clock.Now())
	})
}

func (s *Service) ClockOut(ctx context.Context, caller *auth.Identity, dto ClockOutDTO) (*Record, error) {
	if err := requireProjectTask(dto.Project, dto.Task); err != nil {
		return nil, err
	}

	rec, err := s.transition(ctx, caller, ErrAlreadyClockedOut, func(r *Record) error {
		return r.ClockOutAt(s.clock.Now(), dto.Project, dto.Task)
	})
	if err != nil {
		return nil, err
	}

	if s.timesheets != nil {
		if err := s.timesheets.RecordClockOut(ctx, rec.EmployeeID, rec.LogDate, rec.Project, rec.Task, rec.TotalWorkMinutes); err != nil {
			logger.From(ctx).Warn("timesheet entry from clock-out skipped",
				"employee_id", rec.EmployeeID, "date", rec.LogDate, "error", err)
		}
	}

	s.publish(ctx, events.NewClockedOutEvent(caller.UserID, rec.EmployeeID, rec.LogDate))
	return rec, nil
}

// transition loads today's record, applies apply and writes it back conditionally on the status
// it was read with. A missing record or a lost race fails with invalid.
func (s *Service) transition(ctx context.Context, caller *auth.Identity, invalid error, apply func(*Record) error) (*Record, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByDate(ctx, empID, s.today())
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, internal.NewInternalError("failed to load attendance", err)
	}

	from := rec.Status
	if err := apply(rec); err != nil {
		logger.From(ctx).Info("attendance transition rejected", "employee_id", empID, "status", from, "error", err)
		return nil, err
	}

	ok, err := s.repo.Update(ctx, rec, from)
	if err != nil {
		return nil, internal.NewInternalError("failed to update attendance", err)
	}
	if !ok {
		return nil, invalid
	}
	return rec, nil
}

func (s *Service) Today(ctx context.Context, caller *auth.Identity) (TodayStatus, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return TodayStatus{}, err
	}
	rec, err := s.repo.GetByDate(ctx, empID, s.today())
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return TodayStatus{Status: StatusNotStarted}, nil
		}
		return TodayStatus{}, internal.NewInternalError("failed to load attendance", err)
	}
	return Today(rec, s.clock.Now()), nil
}

func (s *Service) History(ctx context.Context, caller *auth.Identity) ([]HistoryEntry, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	records, err := s.repo.History(ctx, empID, historyLimit)
	if err != nil {
		logger.From(ctx).Error("attendance history failed", "employee_id", empID, "error", err)
		return nil, internal.NewInternalError("Failed to load attendance history", err)
	}
	out := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		out = append(out, r.HistoryEntry())
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.From(ctx).Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
