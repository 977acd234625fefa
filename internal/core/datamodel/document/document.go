package document

import "time"

type Document struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_employee_doc_type"`
	DocType    string    `gorm:"column:doc_type;type:varchar(16);not null;uniqueIndex:idx_employee_doc_type"`
	FileName   string    `gorm:"column:file_name;not null"`
	FilePath   string    `gorm:"column:file_path;not null"`
	UploadedBy string    `gorm:"column:uploaded_by;type:varchar(16)"`
	UploadedAt time.Time `gorm:"column:uploaded_at"`
}

func (Document) TableName() string { return "employee_documents" }
