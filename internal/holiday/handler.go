package holiday

import (
	"net/http"

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

// List handles GET /holidays?year=YYYY
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.List(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*Holiday{}
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// Nearest handles GET /holidays/nearest; {} when nothing is upcoming.
func (h *Handler) Nearest(w http.ResponseWriter, r *http.Request) {
	hol, err := h.Service.Nearest(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if hol == nil {
		h.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}
	h.WriteJSON(w, http.StatusOK, hol)
}

// Create handles POST /holidays
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	hol, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, hol)
}

// Delete handles DELETE /holidays/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Holiday deleted", nil)
}
