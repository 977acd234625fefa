package attendance

import (
	"net/http"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/transport"
	"github.com/frahmantamala/hrms/pkg/logger"
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

type transitionResponse struct {
	Success bool    `json:"success"`
	Record  *Record `json:"record"`
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrUnauthorized)
	}
	return id, ok
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, rec *Record, err error) {
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transitionResponse{Success: true, Record: rec})
}

// Today handles GET /attendance/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	status, err := h.Service.Today(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, status)
}

// ClockIn handles POST /attendance/clock-in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var dto ClockInDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	rec, err := h.Service.ClockIn(r.Context(), id, dto)
	h.respond(w, r, rec, err)
}

// StartBreak handles POST /attendance/start-break
func (h *Handler) StartBreak(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.StartBreak(r.Context(), id)
	h.respond(w, r, rec, err)
}

// EndBreak handles POST /attendance/end-break
func (h *Handler) EndBreak(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rec, err := h.Service.EndBreak(r.Context(), id)
	h.respond(w, r, rec, err)
}

// ClockOut handles POST /attendance/clock-out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var dto ClockOutDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	rec, err := h.Service.ClockOut(r.Context(), id, dto)
	h.respond(w, r, rec, err)
}

// History handles GET /attendance
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.History(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}
