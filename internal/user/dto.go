package user

import (
	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	Designation  string `json:"designation"`
	WorkLocation string `json:"work_location"`
	ManagerID    *int64 `json:"manager_id"`
}

func (d CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("password", d.Password).Required()
	v.Field("role", d.Role).Required()
	v.Field("department", d.Department).MaxLength(100)
	v.Field("designation", d.Designation).MaxLength(100)
	v.Field("work_location", d.WorkLocation).MaxLength(100)
	return v.Validate()
}
