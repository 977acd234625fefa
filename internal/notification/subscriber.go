package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/hrms/internal/core/events"
)

type Enqueuer interface {
	Enqueue(job Job) bool
}

// RegisterEventHandlers turns domain events into queued notifications.
func RegisterEventHandlers(bus *events.EventBus, q Enqueuer) {
	enqueue := func(userID int64, kind, message string) {
		if userID == 0 {
			return
		}
		q.Enqueue(Job{UserID: userID, Type: kind, Message: message})
	}

	bus.Subscribe(events.EventTypeClockedIn, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.AttendanceEvent); ok {
			enqueue(ev.UserID, TypeAttendance, "Clock-in successful")
		}
		return nil
	})

	bus.Subscribe(events.EventTypeClockedOut, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.AttendanceEvent); ok {
			enqueue(ev.UserID, TypeAttendance, "Clock-out successful")
		}
		return nil
	})

	bus.Subscribe(events.EventTypeLeaveApplied, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.LeaveAppliedEvent); ok {
			enqueue(ev.ManagerUserID, TypeLeave, fmt.Sprintf("%s applied for leave", ev.EmployeeName))
		}
		return nil
	})

	bus.Subscribe(events.EventTypeLeaveDecided, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.LeaveDecidedEvent); ok {
			enqueue(ev.EmployeeUserID, TypeLeave, "Your leave has been "+strings.ToLower(ev.Status))
		}
		return nil
	})

	bus.Subscribe(events.EventTypeTimesheetDecided, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.TimesheetDecidedEvent); ok {
			enqueue(ev.OwnerUserID, TypeTimesheet, fmt.Sprintf("Your timesheet for %s was %s", ev.WorkDate, ev.Status))
		}
		return nil
	})

	bus.Subscribe(events.EventTypeDirectMessage, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.DirectMessageEvent); ok {
			kind := ev.Kind
			if kind == "" {
				kind = TypeSystem
			}
			enqueue(ev.UserID, kind, ev.Message)
		}
		return nil
	})
}
