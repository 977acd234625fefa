package employee

import (
	"context"
	"errors"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*Employee, error)
	Me(ctx context.Context, caller *auth.Identity) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Team(ctx context.Context, caller *auth.Identity) ([]*Employee, error)
	SetManager(ctx context.Context, id int64, dto SetManagerDTO) error
	SetRole(ctx context.Context, caller *auth.Identity, id int64, dto SetRoleDTO) error
	GetProfile(ctx context.Context, caller *auth.Identity) (*Profile, error)
	SaveProfile(ctx context.Context, caller *auth.Identity, dto SaveProfileDTO) (*Profile, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err)
	}
	return emp, nil
}

func (s *Service) Me(ctx context.Context, caller *auth.Identity) (*Employee, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, empID)
}

func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	return list, nil
}

// Team lists the caller's direct reports; callers without an employee record have none.
func (s *Service) Team(ctx context.Context, caller *auth.Identity) ([]*Employee, error) {
	if caller.EmployeeID == nil {
		return []*Employee{}, nil
	}
	list, err := s.repo.ListByManager(ctx, *caller.EmployeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list team", err)
	}
	return list, nil
}

// SetManager keeps the reporting tree acyclic: the new manager's chain must not reach the employee.
func (s *Service) SetManager(ctx context.Context, id int64, dto SetManagerDTO) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if dto.ManagerID != nil {
		if *dto.ManagerID == id {
			return ErrSelfManager
		}
		mgr, err := s.GetByID(ctx, *dto.ManagerID)
		if err != nil {
			return err
		}
		if !mgr.IsActive {
			return ErrInactiveTarget
		}
		if err := s.checkChain(ctx, id, mgr); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateManager(ctx, id, dto.ManagerID); err != nil {
		return internal.NewInternalError("failed to update manager", err)
	}
	logger.From(ctx).Info("manager updated", "employee_id", id, "manager_id", dto.ManagerID)
	return nil
}

func (s *Service) checkChain(ctx context.Context, id int64, mgr *Employee) error {
	visited := map[int64]bool{mgr.ID: true}
	next := mgr.ManagerID
	for next != nil {
		if *next == id {
			return ErrManagerCycle
		}
		if visited[*next] {
			// pre-existing loop above us; it does not involve id
			return nil
		}
		visited[*next] = true

		up, err := s.repo.GetByID(ctx, *next)
		if err != nil {
			if errors.Is(err, internal.ErrEmployeeNotFound) {
				return nil
			}
			return internal.NewInternalError("failed to walk reporting line", err)
		}
		next = up.ManagerID
	}
	return nil
}

func (s *Service) SetRole(ctx context.Context, caller *auth.Identity, id int64, dto SetRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	role, ok := auth.ParseRole(dto.Role)
	if !ok {
		return ErrInvalidRole
	}

	emp, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if emp.UserID == nil {
		return ErrNoLinkedUser
	}

	if err := s.repo.UpdateRole(ctx, id, string(role)); err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return internal.ErrUserNotFound
		}
		return internal.NewInternalError("failed to update role", err)
	}
	logger.From(ctx).Info("role updated", "employee_id", id, "role", role, "by", caller.UserID)
	return nil
}

func (s *Service) GetProfile(ctx context.Context, caller *auth.Identity) (*Profile, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetProfile(ctx, empID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load profile", err)
	}
	return p, nil
}

func (s *Service) SaveProfile(ctx context.Context, caller *auth.Identity, dto SaveProfileDTO) (*Profile, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	certs := dto.Certifications
	if certs == nil {
		certs = []string{}
	}
	profile := &Profile{
		EmployeeID:     empID,
		Summary:        dto.Summary,
		Certifications: certs,
	}
	for _, sk := range dto.normalizedSkills() {
		profile.Skills = append(profile.Skills, Skill{Skill: sk, Source: SkillSourceSelf})
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, internal.NewInternalError("failed to save profile", err)
	}
	return s.GetProfile(ctx, caller)
}

func wrapLookup(err error) error {
	if errors.Is(err, internal.ErrEmployeeNotFound) {
		return internal.ErrEmployeeNotFound
	}
	return internal.NewInternalError("failed to load employee", err)
}
