package auth

import (
	"context"
	"strings"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

var AllRoles = []Role{RoleEmployee, RoleManager, RoleHR, RoleAdmin}

// ParseRole lower-cases and checks the value against the fixed role set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Credential is what the credential store keeps per user.
type Credential struct {
	UserID       int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	TokenVersion int
	IsActive     bool
	EmployeeID   *int64
}

// Identity is the caller resolved from a live token.
type Identity struct {
	UserID     int64  `json:"id"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	EmployeeID *int64 `json:"employee_id"`
}

func (i *Identity) HasRole(roles ...Role) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// IsPrivileged is true for hr and admin, who see and decide across teams.
func (i *Identity) IsPrivileged() bool {
	return i.HasRole(RoleHR, RoleAdmin)
}

// RequireEmployee returns the linked employee id or a forbidden error for accounts without one.
func (i *Identity) RequireEmployee() (int64, error) {
	if i == nil || i.EmployeeID == nil {
		return 0, ErrNoEmployeeProfile
	}
	return *i.EmployeeID, nil
}

type ResetToken struct {
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
}

// Claims represents JWT token claims
type Claims struct {
	UserID       int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	EmployeeID   *int64 `json:"employee_id"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() *Identity {
	role, _ := ParseRole(c.Role)
	return &Identity{
		UserID:     c.UserID,
		Email:      c.Email,
		Role:       role,
		EmployeeID: c.EmployeeID,
	}
}

// TokenGenerator creates and verifies access tokens.
type TokenGenerator interface {
	GenerateAccessToken(cred *Credential) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// CredentialStore is the persistence port for users, password history and reset tokens.
// Lookups return internal.ErrUserNotFound when nothing matches.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	FindByID(ctx context.Context, userID int64) (*Credential, error)
	// TokenVersion returns the live counter and active flag.
	TokenVersion(ctx context.Context, userID int64) (version int, active bool, err error)
	RecentPasswordHashes(ctx context.Context, userID int64, limit int) ([]string, error)
	// UpdatePassword stores hash, bumps token_version, appends history trimmed to keep, atomically.
	UpdatePassword(ctx context.Context, userID int64, hash string, keep int) error
	IncrementTokenVersion(ctx context.Context, userID int64) (int, error)
	// ReplaceResetToken drops the user's older tokens and stores this one.
	ReplaceResetToken(ctx context.Context, token ResetToken) error
	// FindResetToken returns ErrInvalidResetToken for unknown or expired hashes.
	FindResetToken(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error)
	// ConsumeResetToken deletes the unexpired token with this hash. Exactly one caller wins; the
	// rest get ErrInvalidResetToken.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) error
	DeleteResetTokens(ctx context.Context, userID int64) error
}

// PresenceTracker records "last seen"; failures never reach the caller.
type PresenceTracker interface {
	Touch(ctx context.Context, userID int64) error
}

var (
	ErrWeakPassword = internal.NewValidationError(
		"Password must be at least 8 characters and include uppercase, lowercase, number and special character",
		internal.ErrCodeWeakPassword)
	ErrPasswordReuse          = internal.NewValidationError("You cannot reuse your last 5 passwords", internal.ErrCodePasswordReuse)
	ErrCurrentPasswordInvalid = internal.NewUnauthorizedError("Current password incorrect", internal.ErrCodeInvalidCredentials)
	ErrInvalidResetToken      = internal.NewValidationError("Invalid or expired token", internal.ErrCodeInvalidResetToken)
	ErrNoEmployeeProfile      = internal.NewForbiddenError("No employee profile linked to this account", internal.ErrCodeForbidden)
	ErrSelfApproval           = internal.NewForbiddenError("You cannot decide on your own request", internal.ErrCodeSelfApproval)
	ErrNotReportingLine       = internal.NewForbiddenError("Not authorized for this employee", internal.ErrCodeNotReportingLine)
)

type ctxKey string

const contextIdentityKey ctxKey = "identity"

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = internal.ContextWithUserID(ctx, id.UserID)
	return context.WithValue(ctx, contextIdentityKey, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextIdentityKey).(*Identity)
	return id, ok && id != nil
}
