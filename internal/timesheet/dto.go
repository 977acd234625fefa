package timesheet

import (
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/shopspring/decimal"
)

type CreateDTO struct {
	WorkDate string           `json:"work_date"`
	Project  string           `json:"project"`
	Task     string           `json:"task"`
	Hours    *decimal.Decimal `json:"hours"`
}

func (d *CreateDTO) Validate() *internal.AppError {
	d.WorkDate = strings.TrimSpace(d.WorkDate)
	d.Project = strings.TrimSpace(d.Project)
	d.Task = strings.TrimSpace(d.Task)

	if d.WorkDate == "" || d.Project == "" || d.Task == "" || d.Hours == nil {
		return ErrMissingFields
	}
	if len(d.WorkDate) != len(clock.DateLayout) {
		return ErrInvalidWorkDate
	}
	if _, err := clock.ParseDate(d.WorkDate); err != nil {
		return ErrInvalidWorkDate
	}
	if !ValidHours(*d.Hours) {
		return ErrInvalidHours
	}
	if len(d.Project) > 255 || len(d.Task) > 255 {
		return internal.NewValidationError("project and task must not exceed 255 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type StatusDTO struct {
	Status string `json:"status"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// ParseMonthParam validates a ?month=YYYY-MM query value.
func ParseMonthParam(month string) (string, error) {
	month = strings.TrimSpace(month)
	if len(month) != len(clock.MonthLayout) {
		return "", ErrInvalidMonth
	}
	if _, err := clock.ParseMonth(month); err != nil {
		return "", ErrInvalidMonth
	}
	return month, nil
}
