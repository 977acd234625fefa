package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	attendancedm "github.com/frahmantamala/hrms/internal/core/datamodel/attendance"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	timesheetdm "github.com/frahmantamala/hrms/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/hrms/internal/timesheet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

func monthPattern(month string) string {
	return month + "-%"
}

func (r *TimesheetRepository) Create(ctx context.Context, e *timesheet.Entry) error {
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	row := timesheet.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if datamodel.IsDuplicateKey(err) {
			return timesheet.ErrTimesheetExists
		}
		return err
	}
	e.ID = row.ID
	return nil
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*timesheet.Entry, error) {
	var row timesheetdm.Entry
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timesheet.ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&row), nil
}

func (r *TimesheetRepository) Decide(ctx context.Context, id int64, d timesheet.Decision) (bool, error) {
	res := r.db.WithContext(ctx).Model(&timesheetdm.Entry{}).
		Where("id = ? AND status = ?", id, string(timesheet.StatusSubmitted)).
		Updates(map[string]interface{}{
			"status":      string(d.Status),
			"approved_by": d.ApprovedBy,
			"approved_at": d.ApprovedAt,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TimesheetRepository) ListByMonth(ctx context.Context, employeeID int64, month string) ([]*timesheet.Entry, error) {
	var rows []timesheetdm.Entry
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date LIKE ?", employeeID, monthPattern(month)).
		Order("work_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*timesheet.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, timesheet.FromDataModel(&rows[i]))
	}
	return out, nil
}

type submittedRow struct {
	timesheetdm.Entry
	EmployeeName string
}

func (r *TimesheetRepository) submitted(ctx context.Context, managerID *int64) *gorm.DB {
	q := r.db.WithContext(ctx).Table("timesheets AS t").
		Joins("JOIN employees e ON e.id = t.employee_id").
		Where("t.status = ?", string(timesheet.StatusSubmitted))
	if managerID != nil {
		q = q.Where("e.manager_id = ?", *managerID)
	}
	return q
}

func (r *TimesheetRepository) ListSubmitted(ctx context.Context, month string, managerID *int64) ([]*timesheet.Entry, error) {
	var rows []submittedRow
	err := r.submitted(ctx, managerID).
		Select("t.*, e.name AS employee_name").
		Where("t.work_date LIKE ?", monthPattern(month)).
		Order("t.work_date ASC").Order("t.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*timesheet.Entry, 0, len(rows))
	for i := range rows {
		e := timesheet.FromDataModel(&rows[i].Entry)
		e.EmployeeName = rows[i].EmployeeName
		out = append(out, e)
	}
	return out, nil
}

func (r *TimesheetRepository) CountSubmitted(ctx context.Context, managerID *int64) (int64, error) {
	var n int64
	if err := r.submitted(ctx, managerID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TimesheetRepository) GetOwner(ctx context.Context, employeeID int64) (*timesheet.Owner, error) {
	var e employeedm.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", employeeID).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &timesheet.Owner{
		EmployeeID:   e.ID,
		Name:         e.Name,
		Department:   e.Department,
		Designation:  e.Designation,
		WorkLocation: e.WorkLocation,
		UserID:       e.UserID,
		ManagerID:    e.ManagerID,
	}, nil
}

func (r *TimesheetRepository) Shifts(ctx context.Context, employeeID int64, month string) (map[string]timesheet.Shift, error) {
	var rows []attendancedm.Record
	err := r.db.WithContext(ctx).
		Select("log_date", "clock_in", "clock_out").
		Where("employee_id = ? AND log_date LIKE ?", employeeID, monthPattern(month)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]timesheet.Shift, len(rows))
	for _, row := range rows {
		out[row.LogDate] = timesheet.Shift{ClockIn: row.ClockIn, ClockOut: row.ClockOut}
	}
	return out, nil
}

func (r *TimesheetRepository) GetLock(ctx context.Context, month string) (*timesheet.Lock, error) {
	var row timesheetdm.Lock
	if err := r.db.WithContext(ctx).Where("month = ?", month).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &timesheet.Lock{Month: month}, nil
		}
		return nil, err
	}
	lockedAt := row.LockedAt
	return &timesheet.Lock{Month: row.Month, IsLocked: row.IsLocked, LockedAt: &lockedAt, LockedBy: row.LockedBy}, nil
}

// UpsertLock is safe to repeat: a second write for the month only refreshes the same columns.
func (r *TimesheetRepository) UpsertLock(ctx context.Context, lock timesheet.Lock) error {
	row := timesheetdm.Lock{Month: lock.Month, IsLocked: lock.IsLocked, LockedBy: lock.LockedBy}
	if lock.LockedAt != nil {
		row.LockedAt = *lock.LockedAt
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_locked", "locked_at", "locked_by"}),
	}).Create(&row).Error
}
