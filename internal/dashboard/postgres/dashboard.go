package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

// DashboardRepository runs the team aggregates as plain SQL. Placeholders are written as ? and rebound
// for the driver, so the same queries serve postgres, mysql and sqlite.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

type memberRow struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	UserID *int64 `db:"user_id"`
}

type attendanceRow struct {
	EmployeeID int64      `db:"employee_id"`
	Status     string     `db:"status"`
	ClockIn    *time.Time `db:"clock_in"`
}

func (r *DashboardRepository) TeamMembers(ctx context.Context, managerID int64) ([]dashboard.Member, error) {
	var rows []memberRow
	query := r.db.Rebind(`SELECT id, name, user_id FROM employees WHERE manager_id = ? AND is_active = ? ORDER BY name, id`)
	if err := r.db.SelectContext(ctx, &rows, query, managerID, true); err != nil {
		return nil, err
	}
	out := make([]dashboard.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, dashboard.Member{EmployeeID: row.ID, Name: row.Name, UserID: row.UserID})
	}
	return out, nil
}

func (r *DashboardRepository) AttendanceOn(ctx context.Context, employeeIDs []int64, date string) (map[int64]dashboard.DayAttendance, error) {
	out := make(map[int64]dashboard.DayAttendance, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(
		`SELECT employee_id, status, clock_in FROM attendance_logs WHERE log_date = ? AND employee_id IN (?)`,
		date, employeeIDs)
	if err != nil {
		return nil, err
	}
	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EmployeeID] = dashboard.DayAttendance{Status: row.Status, ClockIn: row.ClockIn}
	}
	return out, nil
}

func (r *DashboardRepository) OnLeave(ctx context.Context, employeeIDs []int64, date string) (map[int64]bool, error) {
	out := make(map[int64]bool, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(
		`SELECT DISTINCT employee_id FROM leave_requests
		 WHERE status = ? AND from_date <= ? AND to_date >= ? AND employee_id IN (?)`,
		"APPROVED", date, date, employeeIDs)
	if err != nil {
		return nil, err
	}
	var found []int64
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}
