package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	authPostgres "github.com/frahmantamala/hrms/internal/auth/postgres"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	userdm "github.com/frahmantamala/hrms/internal/core/datamodel/user"
	"github.com/frahmantamala/hrms/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID         int64
	Email      string
	Name       string
	Role       string
	IsActive   bool
	EmployeeID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var rows []userRow
	err := r.db.WithContext(ctx).Raw(`
SELECT u.id, u.email, u.name, u.role, u.is_active, e.id AS employee_id, u.created_at, u.updated_at
FROM users u
LEFT JOIN employees e ON e.user_id = u.id
WHERE u.id = ?`, id).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internal.ErrUserNotFound
	}
	row := rows[0]
	return &user.User{
		ID:         row.ID,
		Email:      row.Email,
		Name:       row.Name,
		Role:       auth.Role(row.Role),
		IsActive:   row.IsActive,
		EmployeeID: row.EmployeeID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (r *UserRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&employeedm.Employee{}).Where("id = ?", employeeID).Count(&count).Error
	return count > 0, err
}

// Create inserts user, employee and password history on one transaction. The unique index on
// users.email decides duplicates, so two concurrent provisionings cannot both win.
func (r *UserRepository) Create(ctx context.Context, a *user.Account) (*user.User, error) {
	now := time.Now()
	u := &userdm.User{
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var emp *employeedm.Employee

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if datamodel.IsDuplicateKey(err) {
				return internal.ErrDuplicateEmail
			}
			return err
		}

		emp = &employeedm.Employee{
			UserID:       &u.ID,
			Name:         a.Name,
			Email:        a.Email,
			Department:   a.Department,
			Designation:  a.Designation,
			WorkLocation: a.WorkLocation,
			ManagerID:    a.ManagerID,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(emp).Error; err != nil {
			return err
		}
		return authPostgres.AppendPasswordHistory(tx, u.ID, a.PasswordHash)
	})
	if err != nil {
		if errors.Is(err, internal.ErrDuplicateEmail) {
			return nil, internal.ErrDuplicateEmail
		}
		return nil, err
	}

	return &user.User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       a.Role,
		IsActive:   true,
		EmployeeID: &emp.ID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}, nil
}
