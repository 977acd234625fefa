package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/pkg/logger"
)

const ForgotPasswordMessage = "If the email exists, a reset link has been sent."

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
	LogoutAll(ctx context.Context, userID int64) error
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

type ServiceConfig struct {
	BCryptCost    int
	ResetTokenTTL time.Duration
	// ResetURLBase is the public base URL used to build the reset link.
	ResetURLBase string
}

// Service is the session issuer and token validator.
type Service struct {
	store     CredentialStore
	tokens    TokenGenerator
	presence  PresenceTracker
	publisher events.Publisher
	clock     clock.Clock
	cfg       ServiceConfig
}

func NewService(store CredentialStore, tokens TokenGenerator, publisher events.Publisher, presence PresenceTracker, clk clock.Clock, cfg ServiceConfig) *Service {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 15 * time.Minute
	}
	if clk == nil {
		clk = clock.NewSystem(time.UTC)
	}
	return &Service{
		store:     store,
		tokens:    tokens,
		presence:  presence,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cred, err := s.store.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if !cred.IsActive || !VerifyPassword(cred.PasswordHash, dto.Password) {
		return nil, internal.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(cred)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	logger.From(ctx).Info("user logged in", "user_id", cred.UserID, "role", cred.Role)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User: UserView{
			ID:         cred.UserID,
			Name:       cred.Name,
			Email:      cred.Email,
			Role:       cred.Role,
			EmployeeID: cred.EmployeeID,
		},
	}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	cred, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return internal.ErrUnauthorized
		}
		return internal.NewInternalError("failed to load user", err)
	}
	if !VerifyPassword(cred.PasswordHash, dto.CurrentPassword) {
		return ErrCurrentPasswordInvalid
	}

	if err := s.setPassword(ctx, userID, dto.NewPassword); err != nil {
		return err
	}

	logger.From(ctx).Info("password changed, sessions invalidated", "user_id", userID)
	return nil
}

// setPassword is shared by change and reset: strength, reuse, then one atomic write.
func (s *Service) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := s.newPasswordHash(ctx, userID, password)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, userID, hash, PasswordHistoryLimit); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}
	return nil
}

// newPasswordHash applies the strength and reuse rules and hashes the accepted password.
func (s *Service) newPasswordHash(ctx context.Context, userID int64, password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	recent, err := s.store.RecentPasswordHashes(ctx, userID, PasswordHistoryLimit)
	if err != nil {
		return "", internal.NewInternalError("failed to load password history", err)
	}
	if matchesAnyHash(recent, password) {
		return "", ErrPasswordReuse
	}

	hash, err := HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	return hash, nil
}

// ForgotPassword never reveals whether the email is registered: every outcome other than a
// malformed request returns nil.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	lg := logger.From(ctx)

	cred, err := s.store.FindByEmail(ctx, strings.TrimSpace(dto.Email))
	if err != nil {
		if !errors.Is(err, internal.ErrUserNotFound) {
			lg.Error("forgot password lookup failed", "error", err)
		}
		return nil
	}
	if !cred.IsActive {
		return nil
	}

	raw, err := generateResetToken()
	if err != nil {
		lg.Error("failed to generate reset token", "error", err)
		return nil
	}

	err = s.store.ReplaceResetToken(ctx, ResetToken{
		UserID:    cred.UserID,
		TokenHash: hashResetToken(raw),
		ExpiresAt: s.clock.Now().Add(s.cfg.ResetTokenTTL),
	})
	if err != nil {
		lg.Error("failed to store reset token", "user_id", cred.UserID, "error", err)
		return nil
	}

	resetURL := fmt.Sprintf("%s/pages/reset-password.html?token=%s", strings.TrimRight(s.cfg.ResetURLBase, "/"), raw)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewPasswordResetRequestedEvent(cred.UserID, cred.Email, cred.Name, resetURL)); err != nil {
			lg.Error("failed to publish reset request", "user_id", cred.UserID, "error", err)
		}
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	tokenHash := hashResetToken(dto.Token)
	token, err := s.store.FindResetToken(ctx, tokenHash, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		return internal.NewInternalError("failed to load reset token", err)
	}

	// a rejected password leaves the token usable
	hash, err := s.newPasswordHash(ctx, token.UserID, dto.NewPassword)
	if err != nil {
		return err
	}

	if err := s.store.ConsumeResetToken(ctx, tokenHash, s.clock.Now()); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		return internal.NewInternalError("failed to consume reset token", err)
	}
	if err := s.store.UpdatePassword(ctx, token.UserID, hash, PasswordHistoryLimit); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	if err := s.store.DeleteResetTokens(ctx, token.UserID); err != nil {
		logger.From(ctx).Error("failed to delete reset tokens", "user_id", token.UserID, "error", err)
	}

	logger.From(ctx).Info("password reset, sessions invalidated", "user_id", token.UserID)
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	version, err := s.store.IncrementTokenVersion(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return internal.ErrUnauthorized
		}
		return internal.NewInternalError("failed to invalidate sessions", err)
	}
	logger.From(ctx).Info("logged out from all devices", "user_id", userID, "token_version", version)
	return nil
}

// Authenticate is the request gate: signature and expiry first, then the live token_version.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, internal.ErrUnauthorized
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	version, active, err := s.store.TokenVersion(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrSessionExpired
		}
		return nil, internal.NewInternalError("failed to verify session", err)
	}
	if !active || version != claims.TokenVersion {
		return nil, internal.ErrSessionExpired
	}

	s.touchPresence(ctx, claims.UserID)

	return claims.Identity(), nil
}

func (s *Service) touchPresence(ctx context.Context, userID int64) {
	if s.presence == nil {
		return
	}
	go func() {
		pctx, cancel := internal.Background(ctx, 2*time.Second)
		defer cancel()
		if err := s.presence.Touch(pctx, userID); err != nil {
			logger.From(pctx).Debug("presence update failed", "user_id", userID, "error", err)
		}
	}()
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
