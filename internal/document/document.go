package document

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
)

const DocTypeCV = "CV"

const UploadedByEmployee = "employee"

type Document struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	DocType    string    `json:"doc_type"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"-"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ListEntry struct {
	EmployeeID int64     `json:"employee_id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
	URL        string    `json:"url"`
}

type Repository interface {
	// Get returns ErrDocumentNotFound when the employee has no document of that type.
	Get(ctx context.Context, employeeID int64, docType string) (*Document, error)
	// Upsert keeps one document per (employee, type), replacing the previous one.
	Upsert(ctx context.Context, doc *Document) error
	// ListByType joins active employees, newest upload first.
	ListByType(ctx context.Context, docType string) ([]ListEntry, error)
	// Owner returns internal.ErrEmployeeNotFound for unknown ids.
	Owner(ctx context.Context, employeeID int64) (auth.Subject, error)
}

// Storage keeps the file bytes; keys are opaque names returned by Save.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader, limit int64) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

var (
	ErrDocumentNotFound = internal.NewNotFoundError("CV not found", internal.ErrCodeDocumentNotFound)
	ErrFileMissing      = internal.NewNotFoundError("CV file not found on server", internal.ErrCodeDocumentNotFound)
	ErrNoFile           = internal.NewValidationError("No file uploaded", internal.ErrCodeInvalidDocument)
	ErrUnsupportedType  = internal.NewValidationError("Only PDF, DOC and DOCX files are allowed", internal.ErrCodeInvalidDocument)
	ErrFileTooLarge     = internal.NewValidationError("File exceeds the maximum allowed size", internal.ErrCodeInvalidDocument)
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// CheckFile validates a CV by extension and, when the client sent one, by content type.
// It returns the lower-cased extension.
func CheckFile(fileName, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	want, ok := contentTypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct != "" && ct != "application/octet-stream" && ct != want {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

func ContentTypeOf(fileName string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}
