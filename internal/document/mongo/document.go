package mongo

import (
	"context"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/document"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type DocumentRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{db: db, coll: db.Collection(mongodb.CollectionDocuments)}
}

func (r *DocumentRepository) Get(ctx context.Context, employeeID int64, docType string) (*document.Document, error) {
	var d mongodb.DocumentDocument
	err := r.coll.FindOne(ctx, bson.M{"employee_id": employeeID, "doc_type": docType}).Decode(&d)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return nil, document.ErrDocumentNotFound
		}
		return nil, err
	}
	return &document.Document{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		DocType:    d.DocType,
		FileName:   d.FileName,
		FilePath:   d.FilePath,
		UploadedBy: d.UploadedBy,
		UploadedAt: d.UploadedAt,
	}, nil
}

func (r *DocumentRepository) Upsert(ctx context.Context, doc *document.Document) error {
	id, err := mongodb.NextID(ctx, r.db, mongodb.CollectionDocuments)
	if err != nil {
		return err
	}
	filter := bson.M{"employee_id": doc.EmployeeID, "doc_type": doc.DocType}
	update := bson.M{
		"$set": bson.M{
			"file_name":   doc.FileName,
			"file_path":   doc.FilePath,
			"uploaded_by": doc.UploadedBy,
			"uploaded_at": doc.UploadedAt,
		},
		"$setOnInsert": bson.M{"_id": id},
	}
	if _, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return err
	}
	stored, err := r.Get(ctx, doc.EmployeeID, doc.DocType)
	if err != nil {
		return err
	}
	doc.ID = stored.ID
	return nil
}

func (r *DocumentRepository) ListByType(ctx context.Context, docType string) ([]document.ListEntry, error) {
	cur, err := r.coll.Find(ctx, bson.M{"doc_type": docType},
		options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongodb.DocumentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []document.ListEntry{}, nil
	}

	ids := make(bson.A, len(docs))
	for i, d := range docs {
		ids[i] = d.EmployeeID
	}
	ecur, err := r.db.Collection(mongodb.CollectionEmployees).Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "is_active": true})
	if err != nil {
		return nil, err
	}
	var emps []mongodb.EmployeeDocument
	if err := ecur.All(ctx, &emps); err != nil {
		return nil, err
	}
	byID := make(map[int64]mongodb.EmployeeDocument, len(emps))
	for _, e := range emps {
		byID[e.ID] = e
	}

	out := make([]document.ListEntry, 0, len(docs))
	for _, d := range docs {
		e, ok := byID[d.EmployeeID]
		if !ok {
			continue
		}
		out = append(out, document.ListEntry{
			EmployeeID: d.EmployeeID,
			Name:       e.Name,
			Department: e.Department,
			FileName:   d.FileName,
			UploadedAt: d.UploadedAt,
		})
	}
	return out, nil
}

func (r *DocumentRepository) Owner(ctx context.Context, employeeID int64) (auth.Subject, error) {
	var e mongodb.EmployeeDocument
	err := r.db.Collection(mongodb.CollectionEmployees).FindOne(ctx, bson.M{"_id": employeeID}).Decode(&e)
	if err != nil {
		if mongodb.IsNotFound(err) {
			return auth.Subject{}, internal.ErrEmployeeNotFound
		}
		return auth.Subject{}, err
	}
	return auth.Subject{EmployeeID: e.ID, ManagerID: e.ManagerID}, nil
}
