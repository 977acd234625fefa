package holiday

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal"
)

type Holiday struct {
	ID           int64     `json:"id"`
	HolidayDate  string    `json:"holiday_date"`
	Name         string    `json:"name"`
	DateReadable string    `json:"date_readable,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository interface {
	// ListBetween returns holidays with from <= date <= to, earliest first.
	ListBetween(ctx context.Context, from, to string) ([]*Holiday, error)
	// Nearest returns the first holiday on or after date, or ErrHolidayNotFound.
	Nearest(ctx context.Context, date string) (*Holiday, error)
	// Create returns ErrHolidayExists when the date already has a holiday.
	Create(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, id int64) error
}

var (
	ErrHolidayNotFound = internal.NewNotFoundError("Holiday not found", internal.ErrCodeHolidayNotFound)
	ErrHolidayExists   = internal.NewConflictError("A holiday already exists on this date", internal.ErrCodeHolidayExists)
	ErrInvalidYear     = internal.NewValidationError("year must be a four digit year", internal.ErrCodeInvalidDate)
)
