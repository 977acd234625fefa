package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/timesheet"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type TimesheetRepository struct {
	db         *mongo.Database
	entries    *mongo.Collection
	locks      *mongo.Collection
	employees  *mongo.Collection
	attendance *mongo.Collection
}

func NewTimesheetRepository(db *mongo.Database) *TimesheetRepository {
	return &TimesheetRepository{
		db:         db,
		entries:    db.Collection(mongodb.CollectionTimesheets),
		locks:      db.Collection(mongodb.CollectionTimesheetLocks),
		employees:  db.Collection(mongodb.CollectionEmployees),
		attendance: db.Collection(mongodb.CollectionAttendance),
	}
}

func monthFilter(month string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(month) + "-"}
}

func fromDocument(d *mongodb.TimesheetDocument) (*timesheet.Entry, error) {
	hours, err := decimal.NewFromString(d.Hours)
	if err != nil {
		return nil, fmt.Errorf("timesheet %d has invalid hours %q: %w", d.ID, d.Hours, err)
	}
	return &timesheet.Entry{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		WorkDate:   d.WorkDate,
		Project:    d.Project,
		Task:       d.Task,
		Hours:      hours,
		Status:     timesheet.Status(d.Status),
		ApprovedBy: d.ApprovedBy,
		ApprovedAt: d.ApprovedAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

func (r *TimesheetRepository) Create(ctx context.Context, e *timesheet.Entry) error {
	id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionTimesheets)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := mongodb.TimesheetDocument{
		ID:         id,
		EmployeeID: e.EmployeeID,
		WorkDate:   e.WorkDate,
		Project:    e.Project,
		Task:       e.Task,
		Hours:      e.Hours.StringFixed(2),
		Status:     string(e.Status),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := r.entries.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return timesheet.ErrTimesheetExists
		}
		return err
	}
	e.ID, e.CreatedAt, e.UpdatedAt = id, now, now
	return nil
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*timesheet.Entry, error) {
	var doc mongodb.TimesheetDocument
	if err := r.entries.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, timesheet.ErrTimesheetNotFound
		}
		return nil, err
	}
	return fromDocument(&doc)
}

func (r *TimesheetRepository) Decide(ctx context.Context, id int64, d timesheet.Decision) (bool, error) {
	res, err := r.entries.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(timesheet.StatusSubmitted)},
		bson.M{"$set": bson.M{
			"status":      string(d.Status),
			"approved_by": d.ApprovedBy,
			"approved_at": d.ApprovedAt,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *TimesheetRepository) find(ctx context.Context, filter bson.M) ([]*timesheet.Entry, error) {
	cur, err := r.entries.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "work_date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.TimesheetDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*timesheet.Entry, 0, len(docs))
	for i := range docs {
		e, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *TimesheetRepository) ListByMonth(ctx context.Context, employeeID int64, month string) ([]*timesheet.Entry, error) {
	return r.find(ctx, bson.M{"employee_id": employeeID, "work_date": monthFilter(month)})
}

// team maps employee ids to names for a manager scope; nil means everyone.
func (r *TimesheetRepository) team(ctx context.Context, managerID *int64) (map[int64]string, bson.A, error) {
	filter := bson.M{}
	if managerID != nil {
		filter["manager_id"] = *managerID
	}
	cur, err := r.employees.Find(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	var docs []mongodb.EmployeeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, nil, err
	}
	names := make(map[int64]string, len(docs))
	ids := make(bson.A, 0, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
		ids = append(ids, d.ID)
	}
	return names, ids, nil
}

func (r *TimesheetRepository) ListSubmitted(ctx context.Context, month string, managerID *int64) ([]*timesheet.Entry, error) {
	names, ids, err := r.team(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*timesheet.Entry{}, nil
	}
	rows, err := r.find(ctx, bson.M{
		"status":      string(timesheet.StatusSubmitted),
		"work_date":   monthFilter(month),
		"employee_id": bson.M{"$in": ids},
	})
	if err != nil {
		return nil, err
	}
	for _, e := range rows {
		e.EmployeeName = names[e.EmployeeID]
	}
	return rows, nil
}

func (r *TimesheetRepository) CountSubmitted(ctx context.Context, managerID *int64) (int64, error) {
	filter := bson.M{"status": string(timesheet.StatusSubmitted)}
	if managerID != nil {
		_, ids, err := r.team(ctx, managerID)
		if err != nil {
			return 0, err
		}
		if len(ids) == 0 {
			return 0, nil
		}
		filter["employee_id"] = bson.M{"$in": ids}
	}
	return r.entries.CountDocuments(ctx, filter)
}

func (r *TimesheetRepository) GetOwner(ctx context.Context, employeeID int64) (*timesheet.Owner, error) {
	var doc mongodb.EmployeeDocument
	if err := r.employees.FindOne(ctx, bson.M{"_id": employeeID}).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &timesheet.Owner{
		EmployeeID:   doc.ID,
		Name:         doc.Name,
		Department:   doc.Department,
		Designation:  doc.Designation,
		WorkLocation: doc.WorkLocation,
		UserID:       doc.UserID,
		ManagerID:    doc.ManagerID,
	}, nil
}

func (r *TimesheetRepository) Shifts(ctx context.Context, employeeID int64, month string) (map[string]timesheet.Shift, error) {
	cur, err := r.attendance.Find(ctx, bson.M{"employee_id": employeeID, "log_date": monthFilter(month)})
	if err != nil {
		return nil, err
	}
	var docs []mongodb.AttendanceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make(map[string]timesheet.Shift, len(docs))
	for _, d := range docs {
		out[d.LogDate] = timesheet.Shift{ClockIn: d.ClockIn, ClockOut: d.ClockOut}
	}
	return out, nil
}

func (r *TimesheetRepository) GetLock(ctx context.Context, month string) (*timesheet.Lock, error) {
	var doc mongodb.TimesheetLockDocument
	if err := r.locks.FindOne(ctx, bson.M{"month": month}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &timesheet.Lock{Month: month}, nil
		}
		return nil, err
	}
	lockedAt := doc.LockedAt
	return &timesheet.Lock{Month: doc.Month, IsLocked: doc.IsLocked, LockedAt: &lockedAt, LockedBy: doc.LockedBy}, nil
}

func (r *TimesheetRepository) UpsertLock(ctx context.Context, lock timesheet.Lock) error {
	set := bson.M{"is_locked": lock.IsLocked, "locked_by": lock.LockedBy}
	if lock.LockedAt != nil {
		set["locked_at"] = *lock.LockedAt
	}
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"month": lock.Month},
		bson.M{"$set": set},
		options.UpdateOne().SetUpsert(true))
	return err
}
