package employee

import (
	"context"
	"encoding/json"
	"time"

	"github.com/frahmantamala/hrms/internal"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
)

type Employee struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	WorkLocation string    `json:"work_location"`
	ManagerID    *int64    `json:"manager_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	SkillSourceSelf = "SELF"
	SkillSourceCV   = "CV"
	SkillSourceHR   = "HR"
)

type Skill struct {
	Skill  string `json:"skill"`
	Source string `json:"source"`
}

type Profile struct {
	EmployeeID     int64     `json:"employee_id"`
	Summary        string    `json:"summary"`
	Certifications []string  `json:"certifications"`
	Skills         []Skill   `json:"skills"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Repository is the persistence port for the organisational directory.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	ListByManager(ctx context.Context, managerID int64) ([]*Employee, error)
	UpdateManager(ctx context.Context, id int64, managerID *int64) error
	// UpdateRole changes the linked user's role and bumps its token_version.
	UpdateRole(ctx context.Context, id int64, role string) error
	GetProfile(ctx context.Context, employeeID int64) (*Profile, error)
	// SaveProfile upserts summary and certifications and inserts missing skills, atomically.
	SaveProfile(ctx context.Context, profile *Profile) error
}

var (
	ErrManagerCycle   = internal.NewValidationError("Manager assignment would create a reporting cycle", internal.ErrCodeManagerCycle)
	ErrSelfManager    = internal.NewValidationError("An employee cannot manage themselves", internal.ErrCodeManagerCycle)
	ErrNoLinkedUser   = internal.NewValidationError("Employee has no user account", internal.ErrCodeUserNotFound)
	ErrInvalidRole    = internal.NewValidationError("Invalid role", internal.ErrCodeInvalidRole)
	ErrInactiveTarget = internal.NewValidationError("Manager must be an active employee", internal.ErrCodeValidationFailed)
)

func FromDataModel(e *employeedm.Employee) *Employee {
	return &Employee{
		ID:           e.ID,
		UserID:       e.UserID,
		Name:         e.Name,
		Email:        e.Email,
		Department:   e.Department,
		Designation:  e.Designation,
		WorkLocation: e.WorkLocation,
		ManagerID:    e.ManagerID,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func ToDataModel(e *Employee) *employeedm.Employee {
	return &employeedm.Employee{
		ID:           e.ID,
		UserID:       e.UserID,
		Name:         e.Name,
		Email:        e.Email,
		Department:   e.Department,
		Designation:  e.Designation,
		WorkLocation: e.WorkLocation,
		ManagerID:    e.ManagerID,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// EncodeCertifications stores the certification list as a JSON array in a text column.
func EncodeCertifications(certs []string) string {
	if len(certs) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(certs)
	return string(b)
}

func DecodeCertifications(raw string) []string {
	certs := []string{}
	if raw == "" {
		return certs
	}
	_ = json.Unmarshal([]byte(raw), &certs)
	return certs
}
