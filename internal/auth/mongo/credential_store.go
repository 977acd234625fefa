package mongo

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CredentialStore implements auth.CredentialStore on MongoDB. Password history lives on the user
// document, so every password write is a single-document update and needs no transaction.
type CredentialStore struct {
	db *mongo.Database
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) users() *mongo.Collection {
	return s.db.Collection(mongodb.CollectionUsers)
}

func (s *CredentialStore) find(ctx context.Context, filter bson.M) (*auth.Credential, error) {
	var doc mongodb.UserDocument
	if err := s.users().FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	cred := &auth.Credential{
		UserID:       doc.ID,
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		TokenVersion: doc.TokenVersion,
		IsActive:     doc.IsActive,
	}
	cred.Role, _ = auth.ParseRole(doc.Role)

	var emp mongodb.EmployeeDocument
	err := s.db.Collection(mongodb.CollectionEmployees).
		FindOne(ctx, bson.M{"user_id": doc.ID}, options.FindOne().SetProjection(bson.M{"_id": 1})).
		Decode(&emp)
	switch {
	case err == nil:
		cred.EmployeeID = &emp.ID
	case !mongodb.IsNotFound(err):
		return nil, err
	}
	return cred, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	return s.find(ctx, bson.M{"email": email})
}

func (s *CredentialStore) FindByID(ctx context.Context, userID int64) (*auth.Credential, error) {
	return s.find(ctx, bson.M{"_id": userID})
}

func (s *CredentialStore) TokenVersion(ctx context.Context, userID int64) (int, bool, error) {
	var doc mongodb.UserDocument
	err := s.users().FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"token_version": 1, "is_active": 1})).Decode(&doc)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return 0, false, internal.ErrUserNotFound
		}
		return 0, false, err
	}
	return doc.TokenVersion, doc.IsActive, nil
}

func (s *CredentialStore) RecentPasswordHashes(ctx context.Context, userID int64, limit int) ([]string, error) {
	var doc mongodb.UserDocument
	err := s.users().FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"password_history": bson.M{"$slice": -limit}})).Decode(&doc)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return newestFirst(doc.PasswordHistory, limit), nil
}

func (s *CredentialStore) UpdatePassword(ctx context.Context, userID int64, hash string, keep int) error {
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, passwordUpdate(hash, keep, time.Now()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// passwordUpdate swaps the hash, bumps token_version and appends to the history trimmed to the
// newest keep entries.
func passwordUpdate(hash string, keep int, now time.Time) bson.M {
	if keep < 1 {
		keep = 1
	}
	return bson.M{
		"$set": bson.M{"password_hash": hash, "updated_at": now},
		"$inc": bson.M{"token_version": 1},
		"$push": bson.M{"password_history": bson.M{
			"$each":  bson.A{hash},
			"$slice": -keep,
		}},
	}
}

// newestFirst reverses the oldest-first history and caps it at limit.
func newestFirst(history []string, limit int) []string {
	if limit < len(history) {
		history = history[len(history)-limit:]
	}
	out := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
	}
	return out
}

func (s *CredentialStore) IncrementTokenVersion(ctx context.Context, userID int64) (int, error) {
	var doc mongodb.UserDocument
	err := s.users().FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"token_version": 1}, "$set": bson.M{"updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return 0, internal.ErrUserNotFound
		}
		return 0, err
	}
	return doc.TokenVersion, nil
}

func (s *CredentialStore) ReplaceResetToken(ctx context.Context, token auth.ResetToken) error {
	if err := s.DeleteResetTokens(ctx, token.UserID); err != nil {
		return err
	}
	id, err := mongodb.NextID(ctx, s.db, mongodb.CollectionResetTokens)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(mongodb.CollectionResetTokens).InsertOne(ctx, mongodb.ResetTokenDocument{
		ID:        id,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: time.Now(),
	})
	return err
}

func (s *CredentialStore) FindResetToken(ctx context.Context, tokenHash string, now time.Time) (*auth.ResetToken, error) {
	var doc mongodb.ResetTokenDocument
	err := s.db.Collection(mongodb.CollectionResetTokens).FindOne(ctx, liveResetToken(tokenHash, now)).Decode(&doc)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return nil, auth.ErrInvalidResetToken
		}
		return nil, err
	}
	return &auth.ResetToken{UserID: doc.UserID, TokenHash: doc.TokenHash, ExpiresAt: doc.ExpiresAt}, nil
}

func (s *CredentialStore) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) error {
	res, err := s.db.Collection(mongodb.CollectionResetTokens).DeleteOne(ctx, liveResetToken(tokenHash, now))
	if err != nil {
		return err
	}
	if res.DeletedCount != 1 {
		return auth.ErrInvalidResetToken
	}
	return nil
}

func liveResetToken(tokenHash string, now time.Time) bson.M {
	return bson.M{
		"token_hash": tokenHash,
		"expires_at": bson.M{"$gt": now},
	}
}

func (s *CredentialStore) DeleteResetTokens(ctx context.Context, userID int64) error {
	_, err := s.db.Collection(mongodb.CollectionResetTokens).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
