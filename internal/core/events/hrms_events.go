package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeClockedIn              = "attendance.clocked_in"
	EventTypeClockedOut             = "attendance.clocked_out"
	EventTypeLeaveApplied           = "leave.applied"
	EventTypeLeaveDecided           = "leave.decided"
	EventTypeTimesheetDecided       = "timesheet.decided"
	EventTypeMonthLocked            = "timesheet.month_locked"
	EventTypePasswordResetRequested = "auth.password_reset_requested"
	EventTypeDirectMessage          = "notification.direct"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// AttendanceEvent covers both clock-in and clock-out.
type AttendanceEvent struct {
	BaseEvent
	UserID     int64  `json:"user_id"`
	EmployeeID int64  `json:"employee_id"`
	LogDate    string `json:"log_date"`
}

func NewClockedInEvent(userID, employeeID int64, logDate string) *AttendanceEvent {
	return newAttendanceEvent(EventTypeClockedIn, userID, employeeID, logDate)
}

func NewClockedOutEvent(userID, employeeID int64, logDate string) *AttendanceEvent {
	return newAttendanceEvent(EventTypeClockedOut, userID, employeeID, logDate)
}

func newAttendanceEvent(eventType string, userID, employeeID int64, logDate string) *AttendanceEvent {
	return &AttendanceEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"user_id":     userID,
			"employee_id": employeeID,
			"log_date":    logDate,
		}),
		UserID:     userID,
		EmployeeID: employeeID,
		LogDate:    logDate,
	}
}

type LeaveAppliedEvent struct {
	BaseEvent
	LeaveID       int64  `json:"leave_id"`
	EmployeeID    int64  `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	ManagerUserID int64  `json:"manager_user_id"`
}

func NewLeaveAppliedEvent(leaveID, employeeID int64, employeeName string, managerUserID int64) *LeaveAppliedEvent {
	return &LeaveAppliedEvent{
		BaseEvent: newBase(EventTypeLeaveApplied, map[string]interface{}{
			"leave_id":        leaveID,
			"employee_id":     employeeID,
			"employee_name":   employeeName,
			"manager_user_id": managerUserID,
		}),
		LeaveID:       leaveID,
		EmployeeID:    employeeID,
		EmployeeName:  employeeName,
		ManagerUserID: managerUserID,
	}
}

type LeaveDecidedEvent struct {
	BaseEvent
	LeaveID        int64  `json:"leave_id"`
	EmployeeUserID int64  `json:"employee_user_id"`
	Status         string `json:"status"`
}

func NewLeaveDecidedEvent(leaveID, employeeUserID int64, status string) *LeaveDecidedEvent {
	return &LeaveDecidedEvent{
		BaseEvent: newBase(EventTypeLeaveDecided, map[string]interface{}{
			"leave_id":         leaveID,
			"employee_user_id": employeeUserID,
			"status":           status,
		}),
		LeaveID:        leaveID,
		EmployeeUserID: employeeUserID,
		Status:         status,
	}
}

type TimesheetDecidedEvent struct {
	BaseEvent
	TimesheetID int64  `json:"timesheet_id"`
	OwnerUserID int64  `json:"owner_user_id"`
	WorkDate    string `json:"work_date"`
	Status      string `json:"status"`
}

func NewTimesheetDecidedEvent(timesheetID, ownerUserID int64, workDate, status string) *TimesheetDecidedEvent {
	return &TimesheetDecidedEvent{
		BaseEvent: newBase(EventTypeTimesheetDecided, map[string]interface{}{
			"timesheet_id":  timesheetID,
			"owner_user_id": ownerUserID,
			"work_date":     workDate,
			"status":        status,
		}),
		TimesheetID: timesheetID,
		OwnerUserID: ownerUserID,
		WorkDate:    workDate,
		Status:      status,
	}
}

type MonthLockedEvent struct {
	BaseEvent
	Month    string `json:"month"`
	LockedBy string `json:"locked_by"`
}

func NewMonthLockedEvent(month, lockedBy string) *MonthLockedEvent {
	return &MonthLockedEvent{
		BaseEvent: newBase(EventTypeMonthLocked, map[string]interface{}{
			"month":     month,
			"locked_by": lockedBy,
		}),
		Month:    month,
		LockedBy: lockedBy,
	}
}

type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ResetURL string `json:"-"`
}

func NewPasswordResetRequestedEvent(userID int64, email, name, resetURL string) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: newBase(EventTypePasswordResetRequested, map[string]interface{}{
			"user_id": userID,
			"email":   email,
		}),
		UserID:   userID,
		Email:    email,
		Name:     name,
		ResetURL: resetURL,
	}
}

// DirectMessageEvent is an operator-sent notification (hrms notify).
type DirectMessageEvent struct {
	BaseEvent
	UserID  int64  `json:"user_id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewDirectMessageEvent(userID int64, kind, message string) *DirectMessageEvent {
	return &DirectMessageEvent{
		BaseEvent: newBase(EventTypeDirectMessage, map[string]interface{}{
			"user_id": userID,
			"kind":    kind,
			"message": message,
		}),
		UserID:  userID,
		Kind:    kind,
		Message: message,
	}
}
