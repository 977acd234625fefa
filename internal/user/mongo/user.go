package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/user"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type UserRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var doc mongodb.UserDocument
	if err := r.db.Collection(mongodb.CollectionUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	u := &user.User{
		ID:        doc.ID,
		Email:     doc.Email,
		Name:      doc.Name,
		Role:      auth.Role(doc.Role),
		IsActive:  doc.IsActive,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	var emp mongodb.EmployeeDocument
	err := r.db.Collection(mongodb.CollectionEmployees).FindOne(ctx, bson.M{"user_id": id}).Decode(&emp)
	switch {
	case err == nil:
		u.EmployeeID = &emp.ID
	case !mongodb.IsNotFound(err):
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	n, err := r.db.Collection(mongodb.CollectionEmployees).CountDocuments(ctx, bson.M{"_id": employeeID})
	return n > 0, err
}

// Create relies on the unique email index for duplicates. The initial password history is part of
// the user document; the employee record is a second write, undone by removing the user document
// when it fails.
func (r *UserRepository) Create(ctx context.Context, a *user.Account) (*user.User, error) {
	now := time.Now()
	users := r.db.Collection(mongodb.CollectionUsers)

	var userID, empID int64
	err := provision(ctx,
		func(ctx context.Context) error {
			id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionUsers)
			if err != nil {
				return err
			}
			_, err = users.InsertOne(ctx, mongodb.UserDocument{
				ID:              id,
				Email:           a.Email,
				Name:            a.Name,
				PasswordHash:    a.PasswordHash,
				PasswordHistory: []string{a.PasswordHash},
				Role:            string(a.Role),
				IsActive:        true,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			if err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return internal.ErrDuplicateEmail
				}
				return err
			}
			userID = id
			return nil
		},
		func(ctx context.Context) error {
			id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionEmployees)
			if err != nil {
				return err
			}
			_, err = r.db.Collection(mongodb.CollectionEmployees).InsertOne(ctx, mongodb.EmployeeDocument{
				ID:           id,
				UserID:       &userID,
				Name:         a.Name,
				Email:        a.Email,
				Department:   a.Department,
				Designation:  a.Designation,
				WorkLocation: a.WorkLocation,
				ManagerID:    a.ManagerID,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return err
			}
			empID = id
			return nil
		},
		func(ctx context.Context) error {
			_, err := users.DeleteOne(ctx, bson.M{"_id": userID})
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	return &user.User{
		ID:         userID,
		Email:      a.Email,
		Name:       a.Name,
		Role:       a.Role,
		IsActive:   true,
		EmployeeID: &empID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// provision runs insertUser then insertRest. When insertRest fails, removeUser undoes the first
// write so the same email can be provisioned again.
func provision(ctx context.Context, insertUser, insertRest, removeUser func(context.Context) error) error {
	if err := insertUser(ctx); err != nil {
		return err
	}
	if err := insertRest(ctx); err != nil {
		if rmErr := removeUser(context.WithoutCancel(ctx)); rmErr != nil {
			return errors.Join(err, fmt.Errorf("remove partially created user: %w", rmErr))
		}
		return err
	}
	return nil
}
