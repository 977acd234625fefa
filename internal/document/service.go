package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/frahmantamala/hrms/pkg/logger"
	"github.com/google/uuid"
)

type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type Download struct {
	FileName    string
	ContentType string
	Body        io.ReadCloser
}

type ServiceAPI interface {
	UploadCV(ctx context.Context, caller *auth.Identity, up Upload) (*Document, error)
	MyCV(ctx context.Context, caller *auth.Identity) (*Download, error)
	EmployeeCV(ctx context.Context, caller *auth.Identity, employeeID int64) (*Download, error)
	ListCVs(ctx context.Context, caller *auth.Identity) ([]ListEntry, error)
}

type Service struct {
	repo    Repository
	storage Storage
	maxSize int64
	clock   clock.Clock
	policy  auth.ReportingLinePolicy
	urlBase string
}

func NewService(repo Repository, storage Storage, maxSize int64, clk clock.Clock) *Service {
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	return &Service{repo: repo, storage: storage, maxSize: maxSize, clock: clk, urlBase: "/api/v1/documents/cv/"}
}

func (s *Service) MaxSize() int64 { return s.maxSize }

func (s *Service) UploadCV(ctx context.Context, caller *auth.Identity, up Upload) (*Document, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	if up.Body == nil || up.FileName == "" {
		return nil, ErrNoFile
	}
	ext, err := CheckFile(up.FileName, up.ContentType)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.Get(ctx, empID, DocTypeCV)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		return nil, internal.NewInternalError("Upload failed", err)
	}

	key, err := s.storage.Save(ctx, fmt.Sprintf("emp_%d_cv_%s%s", empID, uuid.NewString(), ext), up.Body, s.maxSize)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("Upload failed", err)
	}

	doc := &Document{
		EmployeeID: empID,
		DocType:    DocTypeCV,
		FileName:   filepath.Base(up.FileName),
		FilePath:   key,
		UploadedBy: UploadedByEmployee,
		UploadedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		_ = s.storage.Remove(ctx, key)
		return nil, internal.NewInternalError("Upload failed", err)
	}

	if previous != nil && previous.FilePath != key {
		if err := s.storage.Remove(ctx, previous.FilePath); err != nil {
			logger.From(ctx).Warn("stale cv not removed", "employee_id", empID, "key", previous.FilePath, "error", err)
		}
	}
	logger.From(ctx).Info("cv uploaded", "employee_id", empID, "file_name", doc.FileName)
	return doc, nil
}

func (s *Service) MyCV(ctx context.Context, caller *auth.Identity) (*Download, error) {
	empID, err := caller.RequireEmployee()
	if err != nil {
		return nil, err
	}
	return s.open(ctx, empID)
}

func (s *Service) EmployeeCV(ctx context.Context, caller *auth.Identity, employeeID int64) (*Download, error) {
	owner, err := s.repo.Owner(ctx, employeeID)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, internal.NewInternalError("Server error", err)
	}
	if err := s.policy.CanView(caller, owner); err != nil {
		return nil, err
	}
	return s.open(ctx, employeeID)
}

func (s *Service) open(ctx context.Context, employeeID int64) (*Download, error) {
	doc, err := s.repo.Get(ctx, employeeID, DocTypeCV)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("Server error", err)
	}
	body, err := s.storage.Open(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, ErrFileMissing) {
			logger.From(ctx).Warn("cv missing on disk", "employee_id", employeeID, "key", doc.FilePath)
			return nil, err
		}
		return nil, internal.NewInternalError("Server error", err)
	}
	return &Download{FileName: doc.FileName, ContentType: ContentTypeOf(doc.FileName), Body: body}, nil
}

func (s *Service) ListCVs(ctx context.Context, caller *auth.Identity) ([]ListEntry, error) {
	if !caller.IsPrivileged() {
		return nil, internal.ErrForbidden
	}
	rows, err := s.repo.ListByType(ctx, DocTypeCV)
	if err != nil {
		return nil, internal.NewInternalError("Failed to list CVs", err)
	}
	for i := range rows {
		rows[i].URL = fmt.Sprintf("%s%d", s.urlBase, rows[i].EmployeeID)
	}
	return rows, nil
}
