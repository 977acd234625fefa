package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/robfig/cron/v3"
)

// LastWorkingDay is the last Monday-to-Friday date of the month. Holidays are not considered.
func LastWorkingDay(year int, month time.Month) time.Time {
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// IsLastWorkingDay compares calendar dates in t's own location.
func IsLastWorkingDay(t time.Time) bool {
	last := LastWorkingDay(t.Year(), t.Month())
	return t.Day() == last.Day()
}

// Locker closes a month's timesheets on its last working day.
type Locker struct {
	repo      Repository
	publisher events.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewLocker(repo Repository, publisher events.Publisher, clk clock.Clock, logger *slog.Logger) *Locker {
	return &Locker{repo: repo, publisher: publisher, clock: clk, logger: logger}
}

// RunDaily locks the current month when today is its last working day. It reports whether a new
// lock was written; a month that is already locked is left alone.
func (l *Locker) RunDaily(ctx context.Context) (bool, error) {
	now := l.clock.Now()
	if !IsLastWorkingDay(now) {
		l.logger.Debug("timesheet lock skipped, not the last working day", "date", clock.FormatDate(now))
		return false, nil
	}
	return l.Lock(ctx, now.Format(clock.MonthLayout), LockedBySystem)
}

// Lock writes the lock for month unless it is already in place.
func (l *Locker) Lock(ctx context.Context, month, lockedBy string) (bool, error) {
	if _, err := clock.ParseMonth(month); err != nil {
		return false, ErrInvalidMonth
	}

	current, err := l.repo.GetLock(ctx, month)
	if err != nil {
		return false, fmt.Errorf("failed to read lock for %s: %w", month, err)
	}
	if current.IsLocked {
		l.logger.Info("timesheet month already locked", "month", month, "locked_by", current.LockedBy)
		return false, nil
	}

	now := l.clock.Now().UTC()
	if err := l.repo.UpsertLock(ctx, Lock{Month: month, IsLocked: true, LockedAt: &now, LockedBy: lockedBy}); err != nil {
		return false, fmt.Errorf("failed to lock %s: %w", month, err)
	}
	l.logger.Info("timesheet month locked", "month", month, "locked_by", lockedBy)

	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, events.NewMonthLockedEvent(month, lockedBy)); err != nil {
			l.logger.Warn("failed to publish event", "event_type", events.EventTypeMonthLocked, "error", err)
		}
	}
	return true, nil
}

// Scheduler runs the daily lock check on a cron schedule in the business time zone.
type Scheduler struct {
	cron   *cron.Cron
	locker *Locker
	logger *slog.Logger
}

func NewScheduler(locker *Locker, spec string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, locker: locker, logger: logger}
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid lock schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.locker.RunDaily(ctx); err != nil {
		s.logger.Error("timesheet lock job failed", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()), "location", s.cron.Location().String())
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
