package leave

import (
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
)

type ApplyDTO struct {
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
}

func (d *ApplyDTO) Validate() *internal.AppError {
	d.FromDate = strings.TrimSpace(d.FromDate)
	d.ToDate = strings.TrimSpace(d.ToDate)
	d.LeaveType = strings.ToUpper(strings.TrimSpace(d.LeaveType))

	if d.FromDate == "" || d.ToDate == "" || d.LeaveType == "" {
		return ErrMissingFields
	}
	if len(d.FromDate) != len(clock.DateLayout) || len(d.ToDate) != len(clock.DateLayout) {
		return ErrInvalidDateRange
	}
	from, err := clock.ParseDate(d.FromDate)
	if err != nil {
		return ErrInvalidDateRange
	}
	to, err := clock.ParseDate(d.ToDate)
	if err != nil {
		return ErrInvalidDateRange
	}
	if to.Before(from) {
		return ErrInvalidDateRange
	}
	if len(d.Reason) > 1000 {
		return internal.NewValidationFieldError("reason", "reason must not exceed 1000 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type DecisionDTO struct {
	Decision string `json:"decision"`
}

func (d DecisionDTO) Status() (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(d.Decision))) {
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", ErrInvalidDecision
}

type CountResponse struct {
	Count int64 `json:"count"`
}
