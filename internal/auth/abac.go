package auth

import (
	"github.com/frahmantamala/hrms/internal"
)

// Subject is the employee that owns the resource being read or decided.
type Subject struct {
	EmployeeID int64
	ManagerID  *int64
}

func (s Subject) ReportsTo(employeeID *int64) bool {
	return employeeID != nil && s.ManagerID != nil && *s.ManagerID == *employeeID
}

// ReportingLinePolicy is the ownership check layered on top of role gates.
type ReportingLinePolicy struct{}

// CanDecide applies to leave and timesheet decisions. Nobody decides their own request; managers
// only decide for direct reports; hr and admin skip the reporting-line check.
func (ReportingLinePolicy) CanDecide(caller *Identity, owner Subject) error {
	if !caller.HasRole(RoleManager, RoleHR, RoleAdmin) {
		return internal.ErrForbidden
	}
	if caller.EmployeeID != nil && *caller.EmployeeID == owner.EmployeeID {
		return ErrSelfApproval
	}
	if caller.IsPrivileged() {
		return nil
	}
	if !owner.ReportsTo(caller.EmployeeID) {
		return ErrNotReportingLine
	}
	return nil
}

// CanView allows the owner, hr/admin and the owner's direct manager.
func (ReportingLinePolicy) CanView(caller *Identity, owner Subject) error {
	if caller == nil {
		return internal.ErrUnauthorized
	}
	if caller.EmployeeID != nil && *caller.EmployeeID == owner.EmployeeID {
		return nil
	}
	if caller.IsPrivileged() {
		return nil
	}
	if caller.HasRole(RoleManager) && owner.ReportsTo(caller.EmployeeID) {
		return nil
	}
	return internal.ErrForbidden
}
