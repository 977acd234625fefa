package mongo

import (
	"context"
	"time"

	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/holiday"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type HolidayRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewHolidayRepository(db *mongo.Database) *HolidayRepository {
	return &HolidayRepository{db: db, coll: db.Collection(mongodb.CollectionHolidays)}
}

func fromDocument(d *mongodb.HolidayDocument) *holiday.Holiday {
	return &holiday.Holiday{ID: d.ID, HolidayDate: d.HolidayDate, Name: d.Name, CreatedAt: d.CreatedAt}
}

func (r *HolidayRepository) ListBetween(ctx context.Context, from, to string) ([]*holiday.Holiday, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"holiday_date": bson.M{"$gte": from, "$lte": to}},
		options.Find().SetSort(bson.D{{Key: "holiday_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.HolidayDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*holiday.Holiday, 0, len(docs))
	for i := range docs {
		out = append(out, fromDocument(&docs[i]))
	}
	return out, nil
}

func (r *HolidayRepository) Nearest(ctx context.Context, date string) (*holiday.Holiday, error) {
	var doc mongodb.HolidayDocument
	err := r.coll.FindOne(ctx,
		bson.M{"holiday_date": bson.M{"$gte": date}},
		options.FindOne().SetSort(bson.D{{Key: "holiday_date", Value: 1}}),
	).Decode(&doc)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return nil, holiday.ErrHolidayNotFound
		}
		return nil, err
	}
	return fromDocument(&doc), nil
}

func (r *HolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionHolidays)
	if err != nil {
		return err
	}
	doc := mongodb.HolidayDocument{ID: id, HolidayDate: h.HolidayDate, Name: h.Name, CreatedAt: time.Now().UTC()}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return holiday.ErrHolidayExists
		}
		return err
	}
	h.ID, h.CreatedAt = id, doc.CreatedAt
	return nil
}

func (r *HolidayRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}
