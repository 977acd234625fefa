package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

type Entry struct {
	ID         int64           `gorm:"primaryKey"`
	EmployeeID int64           `gorm:"column:employee_id;not null;uniqueIndex:idx_timesheet_employee_date"`
	WorkDate   string          `gorm:"column:work_date;type:varchar(10);not null;uniqueIndex:idx_timesheet_employee_date"`
	Project    string          `gorm:"column:project;not null"`
	Task       string          `gorm:"column:task;not null"`
	Hours      decimal.Decimal `gorm:"column:hours;type:numeric(5,2);not null"`
	Status     string          `gorm:"column:status;type:varchar(16);not null;index"`
	ApprovedBy *int64          `gorm:"column:approved_by"`
	ApprovedAt *time.Time      `gorm:"column:approved_at"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "timesheets" }

type Lock struct {
	ID       int64     `gorm:"primaryKey"`
	Month    string    `gorm:"column:month;type:varchar(7);uniqueIndex;not null"`
	IsLocked bool      `gorm:"column:is_locked;not null"`
	LockedAt time.Time `gorm:"column:locked_at"`
	LockedBy string    `gorm:"column:locked_by;type:varchar(32)"`
}

func (Lock) TableName() string { return "timesheet_locks" }
