package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	documentdm "github.com/frahmantamala/hrms/internal/core/datamodel/document"
	employeedm "github.com/frahmantamala/hrms/internal/core/datamodel/employee"
	"github.com/frahmantamala/hrms/internal/document"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Get(ctx context.Context, employeeID int64, docType string) (*document.Document, error) {
	var row documentdm.Document
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND doc_type = ?", employeeID, docType).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrDocumentNotFound
		}
		return nil, err
	}
	return &document.Document{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		DocType:    row.DocType,
		FileName:   row.FileName,
		FilePath:   row.FilePath,
		UploadedBy: row.UploadedBy,
		UploadedAt: row.UploadedAt,
	}, nil
}

func (r *DocumentRepository) Upsert(ctx context.Context, doc *document.Document) error {
	row := documentdm.Document{
		EmployeeID: doc.EmployeeID,
		DocType:    doc.DocType,
		FileName:   doc.FileName,
		FilePath:   doc.FilePath,
		UploadedBy: doc.UploadedBy,
		UploadedAt: doc.UploadedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "doc_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_name", "file_path", "uploaded_by", "uploaded_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}
	doc.ID = row.ID
	return nil
}

func (r *DocumentRepository) ListByType(ctx context.Context, docType string) ([]document.ListEntry, error) {
	var rows []document.ListEntry
	err := r.db.WithContext(ctx).
		Table("employee_documents AS d").
		Select("d.employee_id, e.name, e.department, d.file_name, d.uploaded_at").
		Joins("JOIN employees e ON e.id = d.employee_id").
		Where("d.doc_type = ? AND e.is_active = ?", docType, true).
		Order("d.uploaded_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DocumentRepository) Owner(ctx context.Context, employeeID int64) (auth.Subject, error) {
	var emp employeedm.Employee
	err := r.db.WithContext(ctx).Select("id", "manager_id").Where("id = ?", employeeID).Take(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Subject{}, internal.ErrEmployeeNotFound
		}
		return auth.Subject{}, err
	}
	return auth.Subject{EmployeeID: emp.ID, ManagerID: emp.ManagerID}, nil
}
