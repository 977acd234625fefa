package mongo

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal/attendance"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AttendanceRepository struct {
	coll *mongo.Collection
	db   *mongo.Database
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{coll: db.Collection(mongodb.CollectionAttendance), db: db}
}

func fromDocument(d *mongodb.AttendanceDocument) *attendance.Record {
	return &attendance.Record{
		ID:                d.ID,
		EmployeeID:        d.EmployeeID,
		LogDate:           d.LogDate,
		ClockIn:           d.ClockIn,
		ClockOut:          d.ClockOut,
		BreakStart:        d.BreakStart,
		TotalBreakMinutes: d.TotalBreakMinutes,
		TotalWorkMinutes:  d.TotalWorkMinutes,
		Status:            attendance.Status(d.Status),
		Project:           d.Project,
		Task:              d.Task,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		Accuracy:          d.Accuracy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (r *AttendanceRepository) GetByDate(ctx context.Context, employeeID int64, date string) (*attendance.Record, error) {
	var doc mongodb.AttendanceDocument
	err := r.coll.FindOne(ctx, bson.M{"employee_id": employeeID, "log_date": date}).Decode(&doc)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) error {
	id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionAttendance)
	if err != nil {
		return err
	}
	now := time.Now()
	rec.ID, rec.CreatedAt, rec.UpdatedAt = id, now, now

	_, err = r.coll.InsertOne(ctx, mongodb.AttendanceDocument{
		ID:                rec.ID,
		EmployeeID:        rec.EmployeeID,
		LogDate:           rec.LogDate,
		ClockIn:           rec.ClockIn,
		ClockOut:          rec.ClockOut,
		BreakStart:        rec.BreakStart,
		TotalBreakMinutes: rec.TotalBreakMinutes,
		TotalWorkMinutes:  rec.TotalWorkMinutes,
		Status:            string(rec.Status),
		Project:           rec.Project,
		Task:              rec.Task,
		Latitude:          rec.Latitude,
		Longitude:         rec.Longitude,
		Accuracy:          rec.Accuracy,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if mongo.IsDuplicateKeyError(err) {
		return attendance.ErrRecordExists
	}
	return err
}

func (r *AttendanceRepository) Update(ctx context.Context, rec *attendance.Record, from attendance.Status) (bool, error) {
	rec.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": rec.ID, "status": string(from)},
		bson.M{"$set": bson.M{
			"clock_in":            rec.ClockIn,
			"clock_out":           rec.ClockOut,
			"break_start":         rec.BreakStart,
			"total_break_minutes": rec.TotalBreakMinutes,
			"total_work_minutes":  rec.TotalWorkMinutes,
			"status":              string(rec.Status),
			"project":             rec.Project,
			"task":                rec.Task,
			"latitude":            rec.Latitude,
			"longitude":           rec.Longitude,
			"accuracy":            rec.Accuracy,
			"updated_at":          rec.UpdatedAt,
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *AttendanceRepository) History(ctx context.Context, employeeID int64, limit int) ([]*attendance.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "log_date", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"employee_id": employeeID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongodb.AttendanceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*attendance.Record, 0, len(docs))
	for i := range docs {
		out = append(out, fromDocument(&docs[i]))
	}
	return out, nil
}
