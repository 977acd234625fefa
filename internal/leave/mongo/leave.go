package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/leave"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// LeaveRepository keeps requests in a collection of their own. The overlap check and insert are not
// atomic here; concurrent applies for the same employee can both pass the check.
type LeaveRepository struct {
	db        *mongo.Database
	leaves    *mongo.Collection
	types     *mongo.Collection
	employees *mongo.Collection
}

func NewLeaveRepository(db *mongo.Database) *LeaveRepository {
	return &LeaveRepository{
		db:        db,
		leaves:    db.Collection(mongodb.CollectionLeaves),
		types:     db.Collection(mongodb.CollectionLeaveTypes),
		employees: db.Collection(mongodb.CollectionEmployees),
	}
}

func fromDocument(d *mongodb.LeaveDocument) *leave.Request {
	return &leave.Request{
		ID:           d.ID,
		EmployeeID:   d.EmployeeID,
		FromDate:     d.FromDate,
		ToDate:       d.ToDate,
		LeaveType:    d.LeaveType,
		Reason:       d.Reason,
		Status:       leave.Status(d.Status),
		Days:         leave.DayCount(d.FromDate, d.ToDate),
		ApprovedBy:   d.ApprovedBy,
		ApprovedRole: d.ApprovedRole,
		ApprovedAt:   d.ApprovedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *LeaveRepository) GetType(ctx context.Context, code string) (*leave.Type, error) {
	var doc mongodb.LeaveTypeDocument
	if err := r.types.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, leave.ErrUnknownType
		}
		return nil, err
	}
	return &leave.Type{Code: doc.Code, Name: doc.Name, AnnualQuota: doc.AnnualQuota}, nil
}

func (r *LeaveRepository) ListTypes(ctx context.Context) ([]leave.Type, error) {
	cur, err := r.types.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.LeaveTypeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]leave.Type, 0, len(docs))
	for _, d := range docs {
		out = append(out, leave.Type{Code: d.Code, Name: d.Name, AnnualQuota: d.AnnualQuota})
	}
	return out, nil
}

func (r *LeaveRepository) employee(ctx context.Context, id int64) (*mongodb.EmployeeDocument, error) {
	var doc mongodb.EmployeeDocument
	if err := r.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *LeaveRepository) GetRequester(ctx context.Context, employeeID int64) (*leave.Requester, error) {
	emp, err := r.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	out := &leave.Requester{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		UserID:     emp.UserID,
		ManagerID:  emp.ManagerID,
	}
	if emp.ManagerID != nil {
		mgr, err := r.employee(ctx, *emp.ManagerID)
		if err != nil && !errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, err
		}
		if mgr != nil {
			out.ManagerUserID = mgr.UserID
		}
	}
	return out, nil
}

func (r *LeaveRepository) Create(ctx context.Context, req *leave.Request) error {
	filter := bson.M{
		"employee_id": req.EmployeeID,
		"status":      bson.M{"$in": bson.A{string(leave.StatusPending), string(leave.StatusApproved)}},
		"from_date":   bson.M{"$lte": req.ToDate},
		"to_date":     bson.M{"$gte": req.FromDate},
	}
	overlapping, err := r.leaves.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return leave.ErrOverlappingLeave
	}

	id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionLeaves)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := mongodb.LeaveDocument{
		ID:         id,
		EmployeeID: req.EmployeeID,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
		LeaveType:  req.LeaveType,
		Reason:     req.Reason,
		Status:     string(req.Status),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := r.leaves.InsertOne(ctx, doc); err != nil {
		return err
	}
	req.ID, req.CreatedAt, req.UpdatedAt = id, now, now
	return nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Request, error) {
	var doc mongodb.LeaveDocument
	if err := r.leaves.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if mongodb.IsNotFound(err) {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func (r *LeaveRepository) Decide(ctx context.Context, id int64, d leave.Decision) (bool, error) {
	res, err := r.leaves.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(leave.StatusPending)},
		bson.M{"$set": bson.M{
			"status":        string(d.Status),
			"approved_by":   d.ApprovedBy,
			"approved_role": d.ApprovedRole,
			"approved_at":   d.ApprovedAt,
			"updated_at":    time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *LeaveRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*leave.Request, error) {
	cur, err := r.leaves.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.LeaveDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*leave.Request, 0, len(docs))
	for i := range docs {
		out = append(out, fromDocument(&docs[i]))
	}
	return out, nil
}

func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int64, leaveType string) ([]*leave.Request, error) {
	filter := bson.M{"employee_id": employeeID}
	if leaveType != "" {
		filter["leave_type"] = leaveType
	}
	return r.find(ctx, filter, bson.D{{Key: "from_date", Value: -1}, {Key: "_id", Value: -1}})
}

// team returns id → name for the employees a manager scope covers; nil managerID means everyone.
func (r *LeaveRepository) team(ctx context.Context, managerID *int64) (map[int64]string, error) {
	filter := bson.M{}
	if managerID != nil {
		filter["manager_id"] = *managerID
	}
	cur, err := r.employees.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []mongodb.EmployeeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}

func teamIDs(names map[int64]string) bson.A {
	ids := make(bson.A, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	return ids
}

func (r *LeaveRepository) ListPending(ctx context.Context, managerID *int64) ([]*leave.Request, error) {
	names, err := r.team(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []*leave.Request{}, nil
	}
	rows, err := r.find(ctx,
		bson.M{"status": string(leave.StatusPending), "employee_id": bson.M{"$in": teamIDs(names)}},
		bson.D{{Key: "from_date", Value: 1}, {Key: "_id", Value: 1}})
	if err != nil {
		return nil, err
	}
	for _, req := range rows {
		req.EmployeeName = names[req.EmployeeID]
	}
	return rows, nil
}

func (r *LeaveRepository) CountOnLeave(ctx context.Context, date string, managerID *int64) (int64, error) {
	filter := bson.M{
		"status":    string(leave.StatusApproved),
		"from_date": bson.M{"$lte": date},
		"to_date":   bson.M{"$gte": date},
	}
	if managerID != nil {
		names, err := r.team(ctx, managerID)
		if err != nil {
			return 0, err
		}
		if len(names) == 0 {
			return 0, nil
		}
		filter["employee_id"] = bson.M{"$in": teamIDs(names)}
	}
	return r.leaves.CountDocuments(ctx, filter)
}
