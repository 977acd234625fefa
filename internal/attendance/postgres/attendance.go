package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal/attendance"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	attendancedm "github.com/frahmantamala/hrms/internal/core/datamodel/attendance"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) GetByDate(ctx context.Context, employeeID int64, date string) (*attendance.Record, error) {
	var row attendancedm.Record
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND log_date = ?", employeeID, date).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}
	return attendance.FromDataModel(&row), nil
}

func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) error {
	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	row := attendance.ToDataModel(rec)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if datamodel.IsDuplicateKey(err) {
			return attendance.ErrRecordExists
		}
		return err
	}
	rec.ID = row.ID
	return nil
}

func (r *AttendanceRepository) Update(ctx context.Context, rec *attendance.Record, from attendance.Status) (bool, error) {
	rec.UpdatedAt = time.Now()
	row := attendance.ToDataModel(rec)
	res := r.db.WithContext(ctx).Model(&attendancedm.Record{}).
		Where("id = ? AND status = ?", rec.ID, string(from)).
		Updates(map[string]interface{}{
			"clock_in":            row.ClockIn,
			"clock_out":           row.ClockOut,
			"break_start":         row.BreakStart,
			"total_break_minutes": row.TotalBreakMinutes,
			"total_work_minutes":  row.TotalWorkMinutes,
			"status":              row.Status,
			"project":             row.Project,
			"task":                row.Task,
			"latitude":            row.Latitude,
			"longitude":           row.Longitude,
			"accuracy":            row.Accuracy,
			"updated_at":          rec.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AttendanceRepository) History(ctx context.Context, employeeID int64, limit int) ([]*attendance.Record, error) {
	var rows []attendancedm.Record
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("log_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*attendance.Record, 0, len(rows))
	for i := range rows {
		out = append(out, attendance.FromDataModel(&rows[i]))
	}
	return out, nil
}
