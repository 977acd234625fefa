package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	userdm "github.com/frahmantamala/hrms/internal/core/datamodel/user"
	"github.com/frahmantamala/hrms/internal/employee"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	var e employeedm.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee.FromDataModel(&e), nil
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int64) (*employee.Employee, error) {
	var e employeedm.Employee
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee.FromDataModel(&e), nil
}

func (r *EmployeeRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*employee.Employee, error) {
	var rows []employeedm.Employee
	if err := scope(r.db.WithContext(ctx)).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*employee.Employee, 0, len(rows))
	for i := range rows {
		out = append(out, employee.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *EmployeeRepository) ListByManager(ctx context.Context, managerID int64) ([]*employee.Employee, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("manager_id = ?", managerID) })
}

func (r *EmployeeRepository) UpdateManager(ctx context.Context, id int64, managerID *int64) error {
	res := r.db.WithContext(ctx).Model(&employeedm.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"manager_id": managerID, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e employeedm.Employee
		if err := tx.Select("id", "user_id").Where("id = ?", id).Take(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrEmployeeNotFound
			}
			return err
		}
		if e.UserID == nil {
			return employee.ErrNoLinkedUser
		}
		res := tx.Model(&userdm.User{}).
			Where("id = ?", *e.UserID).
			Updates(map[string]interface{}{
				"role":          role,
				"token_version": gorm.Expr("token_version + 1"),
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}

func (r *EmployeeRepository) GetProfile(ctx context.Context, employeeID int64) (*employee.Profile, error) {
	db := r.db.WithContext(ctx)
	profile := &employee.Profile{EmployeeID: employeeID, Certifications: []string{}, Skills: []employee.Skill{}}

	var row employeedm.Profile
	err := db.Where("employee_id = ?", employeeID).Take(&row).Error
	switch {
	case err == nil:
		profile.Summary = row.Summary
		profile.Certifications = employee.DecodeCertifications(row.Certifications)
		profile.UpdatedAt = row.UpdatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var skills []employeedm.Skill
	if err := db.Where("employee_id = ?", employeeID).Order("skill ASC").Find(&skills).Error; err != nil {
		return nil, err
	}
	for _, s := range skills {
		profile.Skills = append(profile.Skills, employee.Skill{Skill: s.Skill, Source: s.Source})
	}
	return profile, nil
}

// SaveProfile runs on one transaction: it commits on success and rolls back on any error.
func (r *EmployeeRepository) SaveProfile(ctx context.Context, p *employee.Profile) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"summary", "certifications", "updated_at"}),
		}).Create(&employeedm.Profile{
			EmployeeID:     p.EmployeeID,
			Summary:        p.Summary,
			Certifications: employee.EncodeCertifications(p.Certifications),
			UpdatedAt:      now,
		}).Error
		if err != nil {
			return err
		}

		for _, s := range p.Skills {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&employeedm.Skill{
				EmployeeID: p.EmployeeID,
				Skill:      s.Skill,
				Source:     s.Source,
				CreatedAt:  now,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
