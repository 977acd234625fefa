// Package dashboard serves the manager's team widgets. Every read here is fail-open.
package dashboard

import (
	"context"
	"time"
)

const (
	StatusOnLeave = "ON_LEAVE"
	StatusAbsent  = "ABSENT"
)

type Summary struct {
	Present int64 `json:"present"`
	Total   int64 `json:"total"`
	OnLeave int64 `json:"on_leave"`
	Absent  int64 `json:"absent"`
}

type Member struct {
	EmployeeID int64
	Name       string
	UserID     *int64
}

type DayAttendance struct {
	Status  string
	ClockIn *time.Time
}

type MemberStatus struct {
	EmployeeID int64      `json:"employee_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	ClockIn    *time.Time `json:"clock_in"`
	LastSeen   *time.Time `json:"last_seen"`
}

type Repository interface {
	// TeamMembers lists the active direct reports of managerID by name.
	TeamMembers(ctx context.Context, managerID int64) ([]Member, error)
	AttendanceOn(ctx context.Context, employeeIDs []int64, date string) (map[int64]DayAttendance, error)
	// OnLeave marks employees with an approved leave covering date.
	OnLeave(ctx context.Context, employeeIDs []int64, date string) (map[int64]bool, error)
}

func ids(members []Member) []int64 {
	out := make([]int64, len(members))
	for i, m := range members {
		out[i] = m.EmployeeID
	}
	return out
}

// Summarize counts the team for one day. Absent never goes negative.
func Summarize(members []Member, attendance map[int64]DayAttendance, onLeave map[int64]bool) Summary {
	s := Summary{Total: int64(len(members))}
	for _, m := range members {
		if a, ok := attendance[m.EmployeeID]; ok && a.ClockIn != nil {
			s.Present++
		}
		if onLeave[m.EmployeeID] {
			s.OnLeave++
		}
	}
	s.Absent = max(s.Total-s.Present-s.OnLeave, 0)
	return s
}

// StatusOf prefers the attendance state; leave comes next.
func StatusOf(a DayAttendance, hasRecord, onLeave bool) string {
	switch {
	case hasRecord && a.ClockIn != nil:
		return a.Status
	case onLeave:
		return StatusOnLeave
	default:
		return StatusAbsent
	}
}
