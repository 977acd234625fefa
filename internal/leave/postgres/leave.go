package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	leavedm "github.com/frahmantamala/hrms/internal/core/datamodel/leave"
	"github.com/frahmantamala/hrms/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) GetType(ctx context.Context, code string) (*leave.Type, error) {
	var t leavedm.Type
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrUnknownType
		}
		return nil, err
	}
	return &leave.Type{Code: t.Code, Name: t.Name, AnnualQuota: t.AnnualQuota}, nil
}

func (r *LeaveRepository) ListTypes(ctx context.Context) ([]leave.Type, error) {
	var rows []leavedm.Type
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]leave.Type, 0, len(rows))
	for _, t := range rows {
		out = append(out, leave.Type{Code: t.Code, Name: t.Name, AnnualQuota: t.AnnualQuota})
	}
	return out, nil
}

type requesterRow struct {
	ID            int64
	Name          string
	UserID        *int64
	ManagerID     *int64
	ManagerUserID *int64
}

func (r *LeaveRepository) GetRequester(ctx context.Context, employeeID int64) (*leave.Requester, error) {
	var rows []requesterRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.id, e.name, e.user_id, e.manager_id, m.user_id AS manager_user_id
		FROM employees e
		LEFT JOIN employees m ON m.id = e.manager_id
		WHERE e.id = ?`, employeeID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internal.ErrEmployeeNotFound
	}
	row := rows[0]
	return &leave.Requester{
		EmployeeID:    row.ID,
		Name:          row.Name,
		UserID:        row.UserID,
		ManagerID:     row.ManagerID,
		ManagerUserID: row.ManagerUserID,
	}, nil
}

// Create locks the employee row so two concurrent applies for the same employee serialise on the
// overlap check.
func (r *LeaveRepository) Create(ctx context.Context, req *leave.Request) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp employeedm.Employee
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", req.EmployeeID).
			Take(&emp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrEmployeeNotFound
			}
			return err
		}

		var overlapping int64
		err = tx.Model(&leavedm.Request{}).
			Where("employee_id = ? AND status IN ?", req.EmployeeID,
				[]string{string(leave.StatusPending), string(leave.StatusApproved)}).
			Where("from_date <= ? AND to_date >= ?", req.ToDate, req.FromDate).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return leave.ErrOverlappingLeave
		}

		now := time.Now()
		req.CreatedAt, req.UpdatedAt = now, now
		row := leave.ToDataModel(req)
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		req.ID = row.ID
		return nil
	})
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Request, error) {
	var row leavedm.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, err
	}
	return leave.FromDataModel(&row), nil
}

func (r *LeaveRepository) Decide(ctx context.Context, id int64, d leave.Decision) (bool, error) {
	res := r.db.WithContext(ctx).Model(&leavedm.Request{}).
		Where("id = ? AND status = ?", id, string(leave.StatusPending)).
		Updates(map[string]interface{}{
			"status":        string(d.Status),
			"approved_by":   d.ApprovedBy,
			"approved_role": d.ApprovedRole,
			"approved_at":   d.ApprovedAt,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int64, leaveType string) ([]*leave.Request, error) {
	q := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if leaveType != "" {
		q = q.Where("leave_type = ?", leaveType)
	}
	var rows []leavedm.Request
	if err := q.Order("from_date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

type pendingRow struct {
	leavedm.Request
	EmployeeName string
}

func (r *LeaveRepository) ListPending(ctx context.Context, managerID *int64) ([]*leave.Request, error) {
	q := r.db.WithContext(ctx).Table("leave_requests AS l").
		Select("l.*, e.name AS employee_name").
		Joins("JOIN employees e ON e.id = l.employee_id").
		Where("l.status = ?", string(leave.StatusPending))
	if managerID != nil {
		q = q.Where("e.manager_id = ?", *managerID)
	}
	var rows []pendingRow
	if err := q.Order("l.from_date ASC").Order("l.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*leave.Request, 0, len(rows))
	for i := range rows {
		req := leave.FromDataModel(&rows[i].Request)
		req.EmployeeName = rows[i].EmployeeName
		out = append(out, req)
	}
	return out, nil
}

func (r *LeaveRepository) CountOnLeave(ctx context.Context, date string, managerID *int64) (int64, error) {
	q := r.db.WithContext(ctx).Table("leave_requests AS l").
		Joins("JOIN employees e ON e.id = l.employee_id").
		Where("l.status = ?", string(leave.StatusApproved)).
		Where("l.from_date <= ? AND l.to_date >= ?", date, date)
	if managerID != nil {
		q = q.Where("e.manager_id = ?", *managerID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func fromRows(rows []leavedm.Request) []*leave.Request {
	out := make([]*leave.Request, 0, len(rows))
	for i := range rows {
		out = append(out, leave.FromDataModel(&rows[i]))
	}
	return out
}
