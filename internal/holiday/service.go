package holiday

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, year string) ([]*Holiday, error)
	Nearest(ctx context.Context) (*Holiday, error)
	Create(ctx context.Context, dto CreateDTO) (*Holiday, error)
	Delete(ctx context.Context, id int64) error
	HolidaysInMonth(ctx context.Context, month string) (map[string]string, error)
}

type Service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// List returns a calendar year's holidays; an empty year means the current one.
func (s *Service) List(ctx context.Context, year string) ([]*Holiday, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		year = strconv.Itoa(s.clock.Now().Year())
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1000 || y > 9999 {
		return nil, ErrInvalidYear
	}
	rows, err := s.repo.ListBetween(ctx, fmt.Sprintf("%04d-01-01", y), fmt.Sprintf("%04d-12-31", y))
	if err != nil {
		logger.From(ctx).Error("holiday list failed", "year", y, "error", err)
		return nil, internal.NewInternalError("Failed to fetch holidays", err)
	}
	return rows, nil
}

// Nearest returns the next holiday from today, or nil when none is scheduled.
func (s *Service) Nearest(ctx context.Context) (*Holiday, error) {
	h, err := s.repo.Nearest(ctx, clock.FormatDate(s.clock.Now()))
	if err != nil {
		if errors.Is(err, ErrHolidayNotFound) {
			return nil, nil
		}
		return nil, internal.NewInternalError("Failed to fetch holiday", err)
	}
	if t, err := clock.ParseDate(h.HolidayDate); err == nil {
		h.DateReadable = t.Format("Monday, 2 January 2006")
	}
	return h, nil
}

func (s *Service) Create(ctx context.Context, dto CreateDTO) (*Holiday, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	h := &Holiday{Name: dto.Name, HolidayDate: dto.HolidayDate}
	if err := s.repo.Create(ctx, h); err != nil {
		if errors.Is(err, ErrHolidayExists) {
			return nil, err
		}
		return nil, internal.NewInternalError("Failed to create holiday", err)
	}
	logger.From(ctx).Info("holiday created", "holiday_id", h.ID, "date", h.HolidayDate)
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrHolidayNotFound) {
			return err
		}
		return internal.NewInternalError("Failed to delete holiday", err)
	}
	return nil
}

// HolidaysInMonth maps each holiday date of "YYYY-MM" to its name.
func (s *Service) HolidaysInMonth(ctx context.Context, month string) (map[string]string, error) {
	start, err := clock.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 1, -1)
	rows, err := s.repo.ListBetween(ctx, clock.FormatDate(start), clock.FormatDate(end))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, h := range rows {
		out[h.HolidayDate] = h.Name
	}
	return out, nil
}
