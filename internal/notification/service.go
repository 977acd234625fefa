package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/pkg/logger"
)

type ServiceAPI interface {
	Unread(ctx context.Context, userID int64) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID int64) int64
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Send(ctx context.Context, dto SendDTO) (*Notification, error)
}

// Deliverer stores and pushes one notification synchronously; *Dispatcher is the implementation.
type Deliverer interface {
	Deliver(ctx context.Context, job Job) (*Notification, error)
}

type Service struct {
	repo      Repository
	deliverer Deliverer
}

func NewService(repo Repository, deliverer Deliverer) *Service {
	return &Service{repo: repo, deliverer: deliverer}
}

func (s *Service) Unread(ctx context.Context, userID int64) ([]*Notification, error) {
	rows, err := s.repo.ListUnread(ctx, userID, UnreadLimit)
	if err != nil {
		logger.From(ctx).Error("unread notifications failed", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to fetch notifications", err)
	}
	return rows, nil
}

// UnreadCount is fail-open: a store error reads as zero.
func (s *Service) UnreadCount(ctx context.Context, userID int64) int64 {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		logger.From(ctx).Error("unread count failed", "user_id", userID, "error", err)
		return 0
	}
	return n
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return err
		}
		return internal.NewInternalError("Failed to update notification", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, internal.NewInternalError("Failed to update notifications", err)
	}
	return n, nil
}

type SendDTO struct {
	UserID  int64  `json:"user_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (d *SendDTO) Validate() *internal.AppError {
	d.Message = strings.TrimSpace(d.Message)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if d.Type == "" {
		d.Type = TypeSystem
	}
	if d.UserID <= 0 || d.Message == "" {
		return internal.NewValidationError("user and message are required", internal.ErrCodeMissingFields)
	}
	if len(d.Type) > 32 {
		return internal.NewValidationFieldError("type", "type must not exceed 32 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Send delivers synchronously, bypassing the queue.
func (s *Service) Send(ctx context.Context, dto SendDTO) (*Notification, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	n, err := s.deliverer.Deliver(ctx, Job{UserID: dto.UserID, Type: dto.Type, Message: dto.Message})
	if err != nil {
		return nil, internal.NewInternalError("Failed to send notification", err)
	}
	return n, nil
}
