package auth

import (
	"testing"

	"github.com/frahmantamala/hrms/internal"
	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Abcdef1!", true},
		{"Str0ng&Long", true},
		{"Abc1!", false},
		{"abcdefg1!", false},
		{"ABCDEFG1!", false},
		{"Abcdefgh!", false},
		{"Abcdefgh1", false},
		{"Abcdef1#", false},
		{"Abc def1!", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestReportingLinePolicy(t *testing.T) {
	managerEmp := int64(10)
	hrEmp := int64(20)
	reportEmp := int64(30)
	policy := ReportingLinePolicy{}

	manager := &Identity{UserID: 1, Role: RoleManager, EmployeeID: &managerEmp}
	hr := &Identity{UserID: 2, Role: RoleHR, EmployeeID: &hrEmp}
	admin := &Identity{UserID: 3, Role: RoleAdmin}
	employee := &Identity{UserID: 4, Role: RoleEmployee, EmployeeID: &reportEmp}

	report := Subject{EmployeeID: reportEmp, ManagerID: &managerEmp}
	otherTeam := Subject{EmployeeID: 99, ManagerID: &hrEmp}
	managerOwn := Subject{EmployeeID: managerEmp, ManagerID: &hrEmp}
	hrOwn := Subject{EmployeeID: hrEmp}

	assert.NoError(t, policy.CanDecide(manager, report))
	assert.ErrorIs(t, policy.CanDecide(manager, otherTeam), ErrNotReportingLine)
	assert.ErrorIs(t, policy.CanDecide(manager, managerOwn), ErrSelfApproval)
	assert.NoError(t, policy.CanDecide(hr, otherTeam))
	assert.ErrorIs(t, policy.CanDecide(hr, hrOwn), ErrSelfApproval)
	assert.NoError(t, policy.CanDecide(admin, report))
	assert.ErrorIs(t, policy.CanDecide(employee, report), internal.ErrForbidden)

	assert.NoError(t, policy.CanView(employee, report))
	assert.NoError(t, policy.CanView(manager, report))
	assert.Error(t, policy.CanView(manager, otherTeam))
	assert.NoError(t, policy.CanView(admin, otherTeam))
}
