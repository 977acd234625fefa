package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	userdm "github.com/frahmantamala/hrms/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// CredentialStore implements auth.CredentialStore on gorm (postgres, mysql and sqlite).
type CredentialStore struct {
	db *gorm.DB
}

func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

type credentialRow struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	TokenVersion int
	IsActive     bool
	EmployeeID   *int64
}

const credentialQuery = `SELECT u.id, u.email, u.name, u.password_hash, u.role, u.token_version, u.is_active, e.id AS employee_id
	FROM users u
	LEFT JOIN employees e ON e.user_id = u.id`

func (s *CredentialStore) find(ctx context.Context, where string, arg interface{}) (*auth.Credential, error) {
	var row credentialRow
	err := s.db.WithContext(ctx).Raw(credentialQuery+" WHERE "+where+" LIMIT 1", arg).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, internal.ErrUserNotFound
	}

	role, _ := auth.ParseRole(row.Role)
	return &auth.Credential{
		UserID:       row.ID,
		Email:        row.Email,
		Name:         row.Name,
		PasswordHash: row.PasswordHash,
		Role:         role,
		TokenVersion: row.TokenVersion,
		IsActive:     row.IsActive,
		EmployeeID:   row.EmployeeID,
	}, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	return s.find(ctx, "u.email = ?", email)
}

func (s *CredentialStore) FindByID(ctx context.Context, userID int64) (*auth.Credential, error) {
	return s.find(ctx, "u.id = ?", userID)
}

func (s *CredentialStore) TokenVersion(ctx context.Context, userID int64) (int, bool, error) {
	var u userdm.User
	err := s.db.WithContext(ctx).
		Select("id", "token_version", "is_active").
		Where("id = ?", userID).
		Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, internal.ErrUserNotFound
		}
		return 0, false, err
	}
	return u.TokenVersion, u.IsActive, nil
}

func (s *CredentialStore) RecentPasswordHashes(ctx context.Context, userID int64, limit int) ([]string, error) {
	var hashes []string
	err := s.db.WithContext(ctx).
		Model(&userdm.PasswordHistory{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Pluck("password_hash", &hashes).Error
	return hashes, err
}

func (s *CredentialStore) UpdatePassword(ctx context.Context, userID int64, hash string, keep int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userdm.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"password_hash": hash,
				"token_version": gorm.Expr("token_version + 1"),
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}

		if err := AppendPasswordHistory(tx, userID, hash); err != nil {
			return err
		}
		return trimPasswordHistory(tx, userID, keep)
	})
}

// AppendPasswordHistory is also used when an account is provisioned.
func AppendPasswordHistory(tx *gorm.DB, userID int64, hash string) error {
	return tx.Create(&userdm.PasswordHistory{
		UserID:       userID,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}).Error
}

func trimPasswordHistory(tx *gorm.DB, userID int64, keep int) error {
	var keepIDs []int64
	err := tx.Model(&userdm.PasswordHistory{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return err
	}
	if len(keepIDs) == 0 {
		return nil
	}
	return tx.Where("user_id = ? AND id NOT IN ?", userID, keepIDs).
		Delete(&userdm.PasswordHistory{}).Error
}

func (s *CredentialStore) IncrementTokenVersion(ctx context.Context, userID int64) (int, error) {
	var version int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userdm.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"token_version": gorm.Expr("token_version + 1"),
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return tx.Model(&userdm.User{}).
			Where("id = ?", userID).
			Pluck("token_version", &version).Error
	})
	return version, err
}

func (s *CredentialStore) ReplaceResetToken(ctx context.Context, token auth.ResetToken) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&userdm.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&userdm.PasswordResetToken{
			UserID:    token.UserID,
			TokenHash: token.TokenHash,
			ExpiresAt: token.ExpiresAt.UTC(),
			CreatedAt: time.Now().UTC(),
		}).Error
	})
}

func (s *CredentialStore) FindResetToken(ctx context.Context, tokenHash string, now time.Time) (*auth.ResetToken, error) {
	var t userdm.PasswordResetToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now.UTC()).
		Take(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidResetToken
		}
		return nil, err
	}
	return &auth.ResetToken{UserID: t.UserID, TokenHash: t.TokenHash, ExpiresAt: t.ExpiresAt}, nil
}

func (s *CredentialStore) DeleteResetTokens(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&userdm.PasswordResetToken{}).Error
}

func (s *CredentialStore) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) error {
	res := s.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now.UTC()).
		Delete(&userdm.PasswordResetToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return auth.ErrInvalidResetToken
	}
	return nil
}
