package employee

import "time"

type Employee struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       *int64    `gorm:"column:user_id;uniqueIndex"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;type:varchar(255)"`
	Department   string    `gorm:"column:department"`
	Designation  string    `gorm:"column:designation"`
	WorkLocation string    `gorm:"column:work_location"`
	ManagerID    *int64    `gorm:"column:manager_id;index"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Employee) TableName() string { return "employees" }

type Profile struct {
	ID             int64     `gorm:"primaryKey"`
	EmployeeID     int64     `gorm:"column:employee_id;uniqueIndex;not null"`
	Summary        string    `gorm:"column:summary"`
	Certifications string    `gorm:"column:certifications"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Profile) TableName() string { return "employee_profiles" }

type Skill struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_employee_skill"`
	Skill      string    `gorm:"column:skill;type:varchar(100);not null;uniqueIndex:idx_employee_skill"`
	Source     string    `gorm:"column:source;type:varchar(16);not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Skill) TableName() string { return "employee_skills" }
