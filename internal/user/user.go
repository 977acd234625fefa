package user

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal/auth"
)

// User is the account view returned by the directory.
type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       auth.Role `json:"role"`
	IsActive   bool      `json:"is_active"`
	EmployeeID *int64    `json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Account is a user to provision together with its employee record.
type Account struct {
	Email        string
	Name         string
	PasswordHash string
	Role         auth.Role
	Department   string
	Designation  string
	WorkLocation string
	ManagerID    *int64
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
	// Create stores the user, its employee record and the first password history entry atomically.
	// A taken email surfaces as internal.ErrDuplicateEmail.
	Create(ctx context.Context, account *Account) (*User, error)
}
