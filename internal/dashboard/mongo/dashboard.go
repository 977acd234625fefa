package mongo

import (
	"context"

	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/dashboard"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type DashboardRepository struct {
	db *mongo.Database
}

func NewDashboardRepository(db *mongo.Database) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) TeamMembers(ctx context.Context, managerID int64) ([]dashboard.Member, error) {
	cur, err := r.db.Collection(mongodb.CollectionEmployees).Find(ctx,
		bson.M{"manager_id": managerID, "is_active": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.EmployeeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]dashboard.Member, 0, len(docs))
	for _, d := range docs {
		out = append(out, dashboard.Member{EmployeeID: d.ID, Name: d.Name, UserID: d.UserID})
	}
	return out, nil
}

func inIDs(ids []int64) bson.A {
	out := make(bson.A, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func (r *DashboardRepository) AttendanceOn(ctx context.Context, employeeIDs []int64, date string) (map[int64]dashboard.DayAttendance, error) {
	out := make(map[int64]dashboard.DayAttendance, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	cur, err := r.db.Collection(mongodb.CollectionAttendance).Find(ctx,
		bson.M{"log_date": date, "employee_id": bson.M{"$in": inIDs(employeeIDs)}})
	if err != nil {
		return nil, err
	}
	var docs []mongodb.AttendanceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.EmployeeID] = dashboard.DayAttendance{Status: d.Status, ClockIn: d.ClockIn}
	}
	return out, nil
}

func (r *DashboardRepository) OnLeave(ctx context.Context, employeeIDs []int64, date string) (map[int64]bool, error) {
	out := make(map[int64]bool, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	cur, err := r.db.Collection(mongodb.CollectionLeaves).Find(ctx, bson.M{
		"status":      "APPROVED",
		"from_date":   bson.M{"$lte": date},
		"to_date":     bson.M{"$gte": date},
		"employee_id": bson.M{"$in": inIDs(employeeIDs)},
	})
	if err != nil {
		return nil, err
	}
	var docs []mongodb.LeaveDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.EmployeeID] = true
	}
	return out, nil
}
