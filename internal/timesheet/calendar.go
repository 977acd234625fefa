package timesheet

import (
	"time"

	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/shopspring/decimal"
)

type DayType string

const (
	DayHoliday DayType = "HOL"
	DayWeekOff DayType = "WO"
	DayPresent DayType = "P"
	DayNone    DayType = ""
)

// CalendarDay is one row of the month view. Project, task and times only show once approved.
type CalendarDay struct {
	WorkDate  string           `json:"work_date"`
	Day       string           `json:"day"`
	StartTime string           `json:"start_time,omitempty"`
	EndTime   string           `json:"end_time,omitempty"`
	Project   string           `json:"project,omitempty"`
	Task      string           `json:"task,omitempty"`
	Hours     *decimal.Decimal `json:"hours,omitempty"`
	Status    Status           `json:"status,omitempty"`
	Type      DayType          `json:"type"`
	Holiday   string           `json:"holiday,omitempty"`
}

const timeOfDay = "15:04:05"

// BuildCalendar lays out every day of month. Holidays win over weekends, weekends over approved work.
func BuildCalendar(month time.Time, entries []*Entry, shifts map[string]Shift, holidays map[string]string, loc *time.Location) []CalendarDay {
	if loc == nil {
		loc = time.UTC
	}
	byDate := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		byDate[e.WorkDate] = e
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	var days []CalendarDay
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		date := clock.FormatDate(d)
		day := CalendarDay{WorkDate: date, Day: d.Weekday().String()}

		entry := byDate[date]
		if entry != nil {
			hours := entry.Hours
			day.Hours = &hours
			day.Status = entry.Status
		}
		approved := entry != nil && entry.Status == StatusApproved
		if approved {
			day.Project = entry.Project
			day.Task = entry.Task
			if s, ok := shifts[date]; ok {
				if s.ClockIn != nil {
					day.StartTime = s.ClockIn.In(loc).Format(timeOfDay)
				}
				if s.ClockOut != nil {
					day.EndTime = s.ClockOut.In(loc).Format(timeOfDay)
				}
			}
		}

		name, holiday := holidays[date]
		switch {
		case holiday:
			day.Type = DayHoliday
			day.Holiday = name
		case d.Weekday() == time.Saturday || d.Weekday() == time.Sunday:
			day.Type = DayWeekOff
		case approved:
			day.Type = DayPresent
		default:
			day.Type = DayNone
		}
		days = append(days, day)
	}
	return days
}
