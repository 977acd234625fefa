package user

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	Create(ctx context.Context, caller *auth.Identity, dto CreateUserDTO) (*User, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to get user", err)
	}
	return u, nil
}

// Create provisions a user account and its employee record.
func (s *Service) Create(ctx context.Context, caller *auth.Identity, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, ok := auth.ParseRole(dto.Role)
	if !ok {
		return nil, internal.NewValidationFieldError("role", "role must be one of employee, manager, hr, admin", internal.ErrCodeInvalidRole)
	}
	if err := auth.ValidatePasswordStrength(dto.Password); err != nil {
		return nil, err
	}

	if dto.ManagerID != nil {
		exists, err := s.repo.EmployeeExists(ctx, *dto.ManagerID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check manager", err)
		}
		if !exists {
			return nil, internal.NewValidationFieldError("manager_id", "manager does not exist", internal.ErrCodeEmployeeNotFound)
		}
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u, err := s.repo.Create(ctx, &Account{
		Email:        strings.TrimSpace(dto.Email),
		Name:         strings.TrimSpace(dto.Name),
		PasswordHash: hash,
		Role:         role,
		Department:   dto.Department,
		Designation:  dto.Designation,
		WorkLocation: dto.WorkLocation,
		ManagerID:    dto.ManagerID,
	})
	if err != nil {
		if errors.Is(err, internal.ErrDuplicateEmail) {
			return nil, internal.ErrDuplicateEmail
		}
		logger.From(ctx).Error("user provisioning failed", "email", dto.Email, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	logger.From(ctx).Info("user provisioned", "user_id", u.ID, "role", u.Role, "by", caller.UserID)
	return u, nil
}
