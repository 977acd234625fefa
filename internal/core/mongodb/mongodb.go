// Package mongodb bootstraps the document-store backend and the helpers its adapters share.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/hrms/internal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	CollectionUsers          = "users"
	CollectionResetTokens    = "password_reset_tokens"
	CollectionEmployees      = "employees"
	CollectionProfiles       = "employee_profiles"
	CollectionSkills         = "employee_skills"
	CollectionAttendance     = "attendance_logs"
	CollectionLeaveTypes     = "leave_types"
	CollectionLeaves         = "leave_requests"
	CollectionTimesheets     = "timesheets"
	CollectionTimesheetLocks = "timesheet_locks"
	CollectionNotifications  = "notifications"
	CollectionHolidays       = "holidays"
	CollectionDocuments      = "employee_documents"
	collectionCounters       = "counters"
)

func Connect(ctx context.Context, cfg internal.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := internal.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// NextID hands out monotonically increasing int64 ids per collection, so documents keep the same
// numeric identifiers the relational adapters use.
func NextID(ctx context.Context, db *mongo.Database, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection(collectionCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", collection, err)
	}
	return counter.Seq, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

type index struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexes = []index{
	{CollectionUsers, bson.D{{Key: "email", Value: 1}}, true},
	{CollectionResetTokens, bson.D{{Key: "token_hash", Value: 1}}, true},
	{CollectionEmployees, bson.D{{Key: "manager_id", Value: 1}}, false},
	{CollectionProfiles, bson.D{{Key: "employee_id", Value: 1}}, true},
	{CollectionSkills, bson.D{{Key: "employee_id", Value: 1}, {Key: "skill", Value: 1}}, true},
	{CollectionAttendance, bson.D{{Key: "employee_id", Value: 1}, {Key: "log_date", Value: 1}}, true},
	{CollectionLeaveTypes, bson.D{{Key: "code", Value: 1}}, true},
	{CollectionLeaves, bson.D{{Key: "employee_id", Value: 1}, {Key: "status", Value: 1}}, false},
	{CollectionTimesheets, bson.D{{Key: "employee_id", Value: 1}, {Key: "work_date", Value: 1}}, true},
	{CollectionTimesheetLocks, bson.D{{Key: "month", Value: 1}}, true},
	{CollectionNotifications, bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}}, false},
	{CollectionHolidays, bson.D{{Key: "holiday_date", Value: 1}}, true},
	{CollectionDocuments, bson.D{{Key: "employee_id", Value: 1}, {Key: "doc_type", Value: 1}}, true},
}

// EnsureIndexes is the document-store counterpart of the SQL migrations.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range indexes {
		model := mongo.IndexModel{Keys: idx.keys}
		if idx.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}
