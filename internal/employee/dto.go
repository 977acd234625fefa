package employee

import (
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/common/validation"
)

type SetManagerDTO struct {
	ManagerID *int64 `json:"manager_id"`
}

type SetRoleDTO struct {
	Role string `json:"role"`
}

func (d SetRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required()
	return v.Validate()
}

type SaveProfileDTO struct {
	Summary        string   `json:"summary"`
	Certifications []string `json:"certifications"`
	Skills         []string `json:"skills"`
}

func (d SaveProfileDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("summary", d.Summary).MaxLength(4000)
	for _, s := range d.Skills {
		v.Field("skills", s).MaxLength(100)
	}
	return v.Validate()
}

// normalizedSkills trims, drops blanks and de-duplicates case-insensitively, keeping first spelling.
func (d SaveProfileDTO) normalizedSkills() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(d.Skills))
	for _, s := range d.Skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
