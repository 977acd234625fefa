package timesheet

import (
	"net/http"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/transport"
	"github.com/frahmantamala/hrms/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrUnauthorized)
	}
	return id, ok
}

func (h *Handler) entries(w http.ResponseWriter, r *http.Request, rows []*Entry, err error) {
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*Entry{}
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// Create handles POST /timesheets
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var dto CreateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	entry, err := h.Service.Create(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry)
}

// Mine handles GET /timesheets/my?month=YYYY-MM
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Mine(r.Context(), id, r.URL.Query().Get("month"))
	h.entries(w, r, rows, err)
}

// Calendar handles GET /timesheets/my/calendar?month=YYYY-MM
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	days, err := h.Service.Calendar(r.Context(), id, r.URL.Query().Get("month"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, days)
}

// Export handles GET /timesheets/my/calendar/excel?month=YYYY-MM
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	month := r.URL.Query().Get("month")
	data, err := h.Service.Export(r.Context(), id, month)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", ExcelContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFileName(month))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write export", "error", err)
	}
}

// Approval handles GET /timesheets/approval?month=YYYY-MM
func (h *Handler) Approval(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Approval(r.Context(), id, r.URL.Query().Get("month"))
	h.entries(w, r, rows, err)
}

// PendingCount handles GET /timesheets/pending/my-team
func (h *Handler) PendingCount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.PendingCount(r.Context(), id))
}

// LockStatus handles GET /timesheets/locks/{month}
func (h *Handler) LockStatus(w http.ResponseWriter, r *http.Request) {
	lock, err := h.Service.LockStatus(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lock)
}

// UpdateStatus handles PUT /timesheets/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var dto StatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	status, err := ParseStatus(dto.Status)
	h.decide(w, r, status, err)
}

// DecideAction handles POST /manager/timesheets/{id}/{action}
func (h *Handler) DecideAction(w http.ResponseWriter, r *http.Request) {
	status, err := ParseAction(chi.URLParam(r, "action"))
	h.decide(w, r, status, err)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status Status, parseErr error) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	if parseErr != nil {
		h.WriteAppError(w, r, parseErr)
		return
	}
	entryID, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	entry, err := h.Service.Decide(r.Context(), id, entryID, status)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "timesheet": entry})
}
