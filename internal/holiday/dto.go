package holiday

import (
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
)

type CreateDTO struct {
	Name        string `json:"name"`
	HolidayDate string `json:"holiday_date"`
}

func (d *CreateDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.HolidayDate = strings.TrimSpace(d.HolidayDate)

	if d.Name == "" || d.HolidayDate == "" {
		return internal.NewValidationError("name and holiday_date are required", internal.ErrCodeMissingFields)
	}
	if len(d.Name) > 255 {
		return internal.NewValidationFieldError("name", "name must not exceed 255 characters", internal.ErrCodeValidationFailed)
	}
	if len(d.HolidayDate) != len(clock.DateLayout) {
		return internal.NewValidationFieldError("holiday_date", "holiday_date must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	if _, err := clock.ParseDate(d.HolidayDate); err != nil {
		return internal.NewValidationFieldError("holiday_date", "holiday_date must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
	}
	return nil
}
