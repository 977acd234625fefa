package document

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/transport"
	"github.com/frahmantamala/hrms/pkg/logger"
)

const formField = "cv"

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	MaxSize int64
}

func NewHandler(svc ServiceAPI, maxSize int64) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
		MaxSize:     maxSize,
	}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrUnauthorized)
		return nil, false
	}
	return id, true
}

// Upload handles POST /documents/cv (multipart field "cv").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	// multipart framing on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxSize+64<<10)
	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.WriteAppError(w, r, ErrFileTooLarge)
			return
		}
		h.WriteAppError(w, r, ErrNoFile)
		return
	}
	defer file.Close()

	doc, err := h.Service.UploadCV(r.Context(), id, Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "document": doc})
}

// Mine handles GET /documents/cv/my
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	dl, err := h.Service.MyCV(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.send(w, r, dl)
}

// ByEmployee handles GET /documents/cv/{employeeId}
func (h *Handler) ByEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	empID, err := h.ParseIDParam(r, "employeeId")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	dl, err := h.Service.EmployeeCV(r.Context(), id, empID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.send(w, r, dl)
}

// List handles GET /documents/cv/list
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.ListCVs(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if rows == nil {
		rows = []ListEntry{}
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, dl *Download) {
	defer dl.Body.Close()
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, dl.Body); err != nil {
		logger.From(r.Context()).Warn("cv download interrupted", "error", err)
	}
}
