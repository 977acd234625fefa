package mongo

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/notification"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type NotificationRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{db: db, coll: db.Collection(mongodb.CollectionNotifications)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionNotifications)
	if err != nil {
		return err
	}
	doc := mongodb.NotificationDocument{
		ID:        id,
		UserID:    n.UserID,
		Type:      n.Type,
		Message:   n.Message,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	n.ID, n.CreatedAt, n.IsRead = id, doc.CreatedAt, false
	return nil
}

func (r *NotificationRepository) ListUnread(ctx context.Context, userID int64, limit int) ([]*notification.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID, "is_read": false}, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongodb.NotificationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*notification.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, &notification.Notification{
			ID:        d.ID,
			UserID:    d.UserID,
			Type:      d.Type,
			Message:   d.Message,
			IsRead:    d.IsRead,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
