package leave

import "time"

type Request struct {
	ID           int64      `gorm:"primaryKey"`
	EmployeeID   int64      `gorm:"column:employee_id;not null;index"`
	FromDate     string     `gorm:"column:from_date;type:varchar(10);not null"`
	ToDate       string     `gorm:"column:to_date;type:varchar(10);not null"`
	LeaveType    string     `gorm:"column:leave_type;type:varchar(20);not null"`
	Reason       string     `gorm:"column:reason"`
	Status       string     `gorm:"column:status;type:varchar(16);not null;index"`
	ApprovedBy   *int64     `gorm:"column:approved_by"`
	ApprovedRole *string    `gorm:"column:approved_role;type:varchar(16)"`
	ApprovedAt   *time.Time `gorm:"column:approved_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (Request) TableName() string { return "leave_requests" }

type Type struct {
	ID          int64  `gorm:"primaryKey"`
	Code        string `gorm:"column:code;type:varchar(20);uniqueIndex;not null"`
	Name        string `gorm:"column:name;not null"`
	AnnualQuota int    `gorm:"column:annual_quota;not null"`
}

func (Type) TableName() string { return "leave_types" }
