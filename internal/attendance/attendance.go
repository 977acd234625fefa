package attendance

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/hrms/internal"
	attendancedm "github.com/frahmantamala/hrms/internal/core/datamodel/attendance"
)

type Status string

const (
	// StatusNotStarted stands for "no record today"; it is never persisted.
	StatusNotStarted Status = "NOT_STARTED"
	StatusWorking    Status = "WORKING"
	StatusOnBreak    Status = "ON_BREAK"
	StatusClockedOut Status = "CLOCKED_OUT"
)

type Record struct {
	ID                int64      `json:"id"`
	EmployeeID        int64      `json:"employee_id"`
	LogDate           string     `json:"log_date"`
	ClockIn           *time.Time `json:"clock_in"`
	ClockOut          *time.Time `json:"clock_out"`
	BreakStart        *time.Time `json:"break_start"`
	TotalBreakMinutes int        `json:"total_break_minutes"`
	TotalWorkMinutes  int        `json:"total_work_minutes"`
	Status            Status     `json:"status"`
	Project           string     `json:"project"`
	Task              string     `json:"task"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	Accuracy          *float64   `json:"accuracy,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

var (
	ErrInvalidBreakStart   = internal.NewValidationError("Invalid break start", internal.ErrCodeInvalidTransition)
	ErrInvalidBreakEnd     = internal.NewValidationError("Invalid break end", internal.ErrCodeInvalidTransition)
	ErrAlreadyClockedOut   = internal.NewValidationError("Already clocked out", internal.ErrCodeAlreadyClockedOut)
	ErrProjectTaskRequired = internal.NewValidationError("Project and task are required", internal.ErrCodeMissingFields)

	ErrRecordNotFound = internal.NewNotFoundError("No attendance record for today", internal.ErrCodeAttendanceMissing)
	ErrRecordExists   = internal.NewConflictError("Attendance already recorded for today", internal.ErrCodeAttendanceExists)
)

// Repository persists one record per employee per day.
type Repository interface {
	// GetByDate returns ErrRecordNotFound when the employee has no row for date.
	GetByDate(ctx context.Context, employeeID int64, date string) (*Record, error)
	// Create returns ErrRecordExists when a row for (employee, date) is already there.
	Create(ctx context.Context, rec *Record) error
	// Update writes rec only while the stored status still equals from, and reports whether it did.
	Update(ctx context.Context, rec *Record, from Status) (bool, error)
	History(ctx context.Context, employeeID int64, limit int) ([]*Record, error)
}

// TimesheetRecorder receives the day's work once the employee clocks out.
type TimesheetRecorder interface {
	RecordClockOut(ctx context.Context, employeeID int64, workDate, project, task string, workMinutes int) error
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Seconds() / 60))
}

// ClockInAt opens (or reopens) the day. An existing clock_in is kept; an open break is closed and
// counted so the record never sits in WORKING with a break_start set.
func (r *Record) ClockInAt(now time.Time, loc Location) {
	if r.ClockIn == nil {
		r.ClockIn = &now
	}
	if r.Status == StatusOnBreak && r.BreakStart != nil {
		r.TotalBreakMinutes += roundMinutes(now.Sub(*r.BreakStart))
	}
	r.BreakStart = nil
	r.ClockOut = nil
	r.Status = StatusWorking
	if loc.Latitude != nil {
		r.Latitude, r.Longitude, r.Accuracy = loc.Latitude, loc.Longitude, loc.Accuracy
	}
}

func (r *Record) StartBreakAt(now time.Time) error {
	if r.Status != StatusWorking || r.BreakStart != nil {
		return ErrInvalidBreakStart
	}
	r.BreakStart = &now
	r.Status = StatusOnBreak
	return nil
}

func (r *Record) EndBreakAt(now time.Time) error {
	if r.Status != StatusOnBreak || r.BreakStart == nil {
		return ErrInvalidBreakEnd
	}
	r.TotalBreakMinutes += roundMinutes(now.Sub(*r.BreakStart))
	r.BreakStart = nil
	r.Status = StatusWorking
	return nil
}

// ClockOutAt closes the day: an open break is folded in, and work minutes are whole minutes
// on the clock minus breaks, never negative.
func (r *Record) ClockOutAt(now time.Time, project, task string) error {
	if err := requireProjectTask(project, task); err != nil {
		return err
	}
	if r.Status != StatusWorking && r.Status != StatusOnBreak {
		return ErrAlreadyClockedOut
	}

	if r.Status == StatusOnBreak && r.BreakStart != nil {
		r.TotalBreakMinutes += roundMinutes(now.Sub(*r.BreakStart))
	}
	r.BreakStart = nil
	r.ClockOut = &now

	worked := 0
	if r.ClockIn != nil {
		worked = int(now.Sub(*r.ClockIn) / time.Minute)
	}
	r.TotalWorkMinutes = max(worked-r.TotalBreakMinutes, 0)
	r.Project, r.Task = strings.TrimSpace(project), strings.TrimSpace(task)
	r.Status = StatusClockedOut
	return nil
}

func requireProjectTask(project, task string) error {
	if strings.TrimSpace(project) == "" || strings.TrimSpace(task) == "" {
		return ErrProjectTaskRequired
	}
	return nil
}

type TodayStatus struct {
	Status        Status     `json:"status"`
	ClockInAt     *time.Time `json:"clock_in_at,omitempty"`
	WorkedSeconds int64      `json:"worked_seconds"`
	BreakSeconds  int64      `json:"break_seconds"`
}

// Today projects the live counters. While on break the worked clock is frozen at break_start
// and the break clock runs.
func Today(r *Record, now time.Time) TodayStatus {
	if r == nil || r.ClockIn == nil {
		return TodayStatus{Status: StatusNotStarted}
	}

	breakSecs := int64(r.TotalBreakMinutes) * 60
	var worked int64
	switch r.Status {
	case StatusWorking:
		worked = secondsBetween(*r.ClockIn, now) - breakSecs
	case StatusOnBreak:
		if r.BreakStart != nil {
			worked = secondsBetween(*r.ClockIn, *r.BreakStart) - breakSecs
			breakSecs += secondsBetween(*r.BreakStart, now)
		} else {
			worked = secondsBetween(*r.ClockIn, now) - breakSecs
		}
	default:
		worked = int64(r.TotalWorkMinutes) * 60
	}

	clockIn := *r.ClockIn
	return TodayStatus{
		Status:        r.Status,
		ClockInAt:     &clockIn,
		WorkedSeconds: max(worked, 0),
		BreakSeconds:  max(breakSecs, 0),
	}
}

func secondsBetween(from, to time.Time) int64 {
	return int64(to.Sub(from) / time.Second)
}

type HistoryEntry struct {
	Date     string     `json:"date"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Hours    float64    `json:"hours"`
}

func (r *Record) HistoryEntry() HistoryEntry {
	return HistoryEntry{
		Date:     r.LogDate,
		CheckIn:  r.ClockIn,
		CheckOut: r.ClockOut,
		Hours:    math.Round(float64(r.TotalWorkMinutes)/60*100) / 100,
	}
}

func FromDataModel(m *attendancedm.Record) *Record {
	return &Record{
		ID:                m.ID,
		EmployeeID:        m.EmployeeID,
		LogDate:           m.LogDate,
		ClockIn:           m.ClockIn,
		ClockOut:          m.ClockOut,
		BreakStart:        m.BreakStart,
		TotalBreakMinutes: m.TotalBreakMinutes,
		TotalWorkMinutes:  m.TotalWorkMinutes,
		Status:            Status(m.Status),
		Project:           m.Project,
		Task:              m.Task,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		Accuracy:          m.Accuracy,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func ToDataModel(r *Record) *attendancedm.Record {
	return &attendancedm.Record{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		LogDate:           r.LogDate,
		ClockIn:           utc(r.ClockIn),
		ClockOut:          utc(r.ClockOut),
		BreakStart:        utc(r.BreakStart),
		TotalBreakMinutes: r.TotalBreakMinutes,
		TotalWorkMinutes:  r.TotalWorkMinutes,
		Status:            string(r.Status),
		Project:           r.Project,
		Task:              r.Task,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Accuracy:          r.Accuracy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
