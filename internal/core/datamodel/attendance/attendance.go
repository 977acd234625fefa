package attendance

import "time"

type Record struct {
	ID                int64      `gorm:"primaryKey"`
	EmployeeID        int64      `gorm:"column:employee_id;not null;uniqueIndex:idx_attendance_employee_date"`
	LogDate           string     `gorm:"column:log_date;type:varchar(10);not null;uniqueIndex:idx_attendance_employee_date"`
	ClockIn           *time.Time `gorm:"column:clock_in"`
	ClockOut          *time.Time `gorm:"column:clock_out"`
	BreakStart        *time.Time `gorm:"column:break_start"`
	TotalBreakMinutes int        `gorm:"column:total_break_minutes;not null"`
	TotalWorkMinutes  int        `gorm:"column:total_work_minutes;not null"`
	Status            string     `gorm:"column:status;type:varchar(16);not null"`
	Project           string     `gorm:"column:project"`
	Task              string     `gorm:"column:task"`
	Latitude          *float64   `gorm:"column:latitude"`
	Longitude         *float64   `gorm:"column:longitude"`
	Accuracy          *float64   `gorm:"column:accuracy"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (Record) TableName() string { return "attendance_logs" }
