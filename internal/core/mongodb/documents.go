package mongodb

import "time"

// Document shapes mirror the relational datamodel; ids are allocated with NextID.

// UserDocument keeps its password history inline, oldest first, so a password change is a single
// document update.
type UserDocument struct {
	ID              int64     `bson:"_id"`
	Email           string    `bson:"email"`
	Name            string    `bson:"name"`
	PasswordHash    string    `bson:"password_hash"`
	PasswordHistory []string  `bson:"password_history"`
	Role            string    `bson:"role"`
	TokenVersion    int       `bson:"token_version"`
	IsActive        bool      `bson:"is_active"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type ResetTokenDocument struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	TokenHash string    `bson:"token_hash"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

type EmployeeDocument struct {
	ID           int64     `bson:"_id"`
	UserID       *int64    `bson:"user_id,omitempty"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Department   string    `bson:"department"`
	Designation  string    `bson:"designation"`
	WorkLocation string    `bson:"work_location"`
	ManagerID    *int64    `bson:"manager_id"`
	IsActive     bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type ProfileDocument struct {
	ID             int64     `bson:"_id"`
	EmployeeID     int64     `bson:"employee_id"`
	Summary        string    `bson:"summary"`
	Certifications []string  `bson:"certifications"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

type SkillDocument struct {
	ID         int64     `bson:"_id"`
	EmployeeID int64     `bson:"employee_id"`
	Skill      string    `bson:"skill"`
	Source     string    `bson:"source"`
	CreatedAt  time.Time `bson:"created_at"`
}

type AttendanceDocument struct {
	ID                int64      `bson:"_id"`
	EmployeeID        int64      `bson:"employee_id"`
	LogDate           string     `bson:"log_date"`
	ClockIn           *time.Time `bson:"clock_in"`
	ClockOut          *time.Time `bson:"clock_out"`
	BreakStart        *time.Time `bson:"break_start"`
	TotalBreakMinutes int        `bson:"total_break_minutes"`
	TotalWorkMinutes  int        `bson:"total_work_minutes"`
	Status            string     `bson:"status"`
	Project           string     `bson:"project"`
	Task              string     `bson:"task"`
	Latitude          *float64   `bson:"latitude,omitempty"`
	Longitude         *float64   `bson:"longitude,omitempty"`
	Accuracy          *float64   `bson:"accuracy,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at"`
}

type LeaveTypeDocument struct {
	ID          int64  `bson:"_id"`
	Code        string `bson:"code"`
	Name        string `bson:"name"`
	AnnualQuota int    `bson:"annual_quota"`
}

type LeaveDocument struct {
	ID           int64      `bson:"_id"`
	EmployeeID   int64      `bson:"employee_id"`
	FromDate     string     `bson:"from_date"`
	ToDate       string     `bson:"to_date"`
	LeaveType    string     `bson:"leave_type"`
	Reason       string     `bson:"reason"`
	Status       string     `bson:"status"`
	ApprovedBy   *int64     `bson:"approved_by"`
	ApprovedRole *string    `bson:"approved_role"`
	ApprovedAt   *time.Time `bson:"approved_at"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

// TimesheetDocument keeps hours as a decimal string so no precision is lost.
type TimesheetDocument struct {
	ID         int64      `bson:"_id"`
	EmployeeID int64      `bson:"employee_id"`
	WorkDate   string     `bson:"work_date"`
	Project    string     `bson:"project"`
	Task       string     `bson:"task"`
	Hours      string     `bson:"hours"`
	Status     string     `bson:"status"`
	ApprovedBy *int64     `bson:"approved_by"`
	ApprovedAt *time.Time `bson:"approved_at"`
	CreatedAt  time.Time  `bson:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at"`
}

type TimesheetLockDocument struct {
	Month    string    `bson:"month"`
	IsLocked bool      `bson:"is_locked"`
	LockedAt time.Time `bson:"locked_at"`
	LockedBy string    `bson:"locked_by"`
}

type NotificationDocument struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	Type      string    `bson:"type"`
	Message   string    `bson:"message"`
	IsRead    bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

type HolidayDocument struct {
	ID          int64     `bson:"_id"`
	HolidayDate string    `bson:"holiday_date"`
	Name        string    `bson:"name"`
	CreatedAt   time.Time `bson:"created_at"`
}

type DocumentDocument struct {
	ID         int64     `bson:"_id"`
	EmployeeID int64     `bson:"employee_id"`
	DocType    string    `bson:"doc_type"`
	FileName   string    `bson:"file_name"`
	FilePath   string    `bson:"file_path"`
	UploadedBy string    `bson:"uploaded_by"`
	UploadedAt time.Time `bson:"uploaded_at"`
}
