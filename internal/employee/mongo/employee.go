package mongo

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/employee"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type EmployeeRepository struct {
	db *mongo.Database
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) employees() *mongo.Collection {
	return r.db.Collection(mongodb.CollectionEmployees)
}

func fromDocument(d *mongodb.EmployeeDocument) *employee.Employee {
	return &employee.Employee{
		ID:           d.ID,
		UserID:       d.UserID,
		Name:         d.Name,
		Email:        d.Email,
		Department:   d.Department,
		Designation:  d.Designation,
		WorkLocation: d.WorkLocation,
		ManagerID:    d.ManagerID,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M) (*employee.Employee, error) {
	var doc mongodb.EmployeeDocument
	if err := r.employees().FindOne(ctx, filter).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int64) (*employee.Employee, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *EmployeeRepository) find(ctx context.Context, filter bson.M) ([]*employee.Employee, error) {
	filter["is_active"] = true
	cur, err := r.employees().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.EmployeeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*employee.Employee, 0, len(docs))
	for i := range docs {
		out = append(out, fromDocument(&docs[i]))
	}
	return out, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	return r.find(ctx, bson.M{})
}

func (r *EmployeeRepository) ListByManager(ctx context.Context, managerID int64) ([]*employee.Employee, error) {
	return r.find(ctx, bson.M{"manager_id": managerID})
}

func (r *EmployeeRepository) UpdateManager(ctx context.Context, id int64, managerID *int64) error {
	res, err := r.employees().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"manager_id": managerID, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	emp, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if emp.UserID == nil {
		return employee.ErrNoLinkedUser
	}
	res, err := r.db.Collection(mongodb.CollectionUsers).UpdateOne(ctx, bson.M{"_id": *emp.UserID}, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now()},
		"$inc": bson.M{"token_version": 1},
	})
	if err != nil {
		return err
	}
	return linkedUserMatched(res)
}

// linkedUserMatched reports an employee whose user_id points at a removed account.
func linkedUserMatched(res *mongo.UpdateResult) error {
	if res == nil || res.MatchedCount == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *EmployeeRepository) GetProfile(ctx context.Context, employeeID int64) (*employee.Profile, error) {
	profile := &employee.Profile{EmployeeID: employeeID, Certifications: []string{}, Skills: []employee.Skill{}}

	var doc mongodb.ProfileDocument
	err := r.db.Collection(mongodb.CollectionProfiles).FindOne(ctx, bson.M{"employee_id": employeeID}).Decode(&doc)
	switch {
	case err == nil:
		profile.Summary = doc.Summary
		if doc.Certifications != nil {
			profile.Certifications = doc.Certifications
		}
		profile.UpdatedAt = doc.UpdatedAt
	case !mongodb.IsNotFound(err):
		return nil, err
	}

	cur, err := r.db.Collection(mongodb.CollectionSkills).Find(ctx, bson.M{"employee_id": employeeID},
		options.Find().SetSort(bson.D{{Key: "skill", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var skills []mongodb.SkillDocument
	if err := cur.All(ctx, &skills); err != nil {
		return nil, err
	}
	for _, s := range skills {
		profile.Skills = append(profile.Skills, employee.Skill{Skill: s.Skill, Source: s.Source})
	}
	return profile, nil
}

// SaveProfile upserts the profile document and inserts skills that are not there yet.
func (r *EmployeeRepository) SaveProfile(ctx context.Context, p *employee.Profile) error {
	now := time.Now()
	profiles := r.db.Collection(mongodb.CollectionProfiles)

	var existing mongodb.ProfileDocument
	err := profiles.FindOne(ctx, bson.M{"employee_id": p.EmployeeID}).Decode(&existing)
	switch {
	case err == nil:
		_, err = profiles.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": bson.M{
			"summary":        p.Summary,
			"certifications": p.Certifications,
			"updated_at":     now,
		}})
		if err != nil {
			return err
		}
	case mongodb.IsNotFound(err):
		id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionProfiles)
		if err != nil {
			return err
		}
		_, err = profiles.InsertOne(ctx, mongodb.ProfileDocument{
			ID:             id,
			EmployeeID:     p.EmployeeID,
			Summary:        p.Summary,
			Certifications: p.Certifications,
			UpdatedAt:      now,
		})
		if err != nil {
			return err
		}
	default:
		return err
	}

	skills := r.db.Collection(mongodb.CollectionSkills)
	for _, s := range p.Skills {
		n, err := skills.CountDocuments(ctx, bson.M{"employee_id": p.EmployeeID, "skill": s.Skill})
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionSkills)
		if err != nil {
			return err
		}
		_, err = skills.InsertOne(ctx, mongodb.SkillDocument{
			ID:         id,
			EmployeeID: p.EmployeeID,
			Skill:      s.Skill,
			Source:     s.Source,
			CreatedAt:  now,
		})
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return err
		}
	}
	return nil
}
