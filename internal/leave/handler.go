package leave

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

func (h *Handler) list(w http.ResponseWriter, r *http.Request, rows []*Request, err error) {
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*Request{}
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// Apply handles POST /leaves/apply
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var dto ApplyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	req, err := h.Service.Apply(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "Leave applied successfully", map[string]interface{}{"leave": req})
}

// Decide handles POST /leaves/{id}/decision
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	leaveID, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var dto DecisionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	req, err := h.Service.Decide(r.Context(), id, leaveID, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Leave "+string(req.Status), map[string]interface{}{"leave": req})
}

// Balance handles GET /leaves/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	balances, err := h.Service.Balance(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, balances)
}

// Mine handles GET /leaves/my
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Mine(r.Context(), id)
	h.list(w, r, rows, err)
}

// Used handles GET /leaves/used/{type}
func (h *Handler) Used(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Used(r.Context(), id, chi.URLParam(r, "type"))
	h.list(w, r, rows, err)
}

// Pending handles GET /leaves/pending
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Pending(r.Context(), id)
	h.list(w, r, rows, err)
}

// PendingForTeam handles GET /leaves/pending/my-team
func (h *Handler) PendingForTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.PendingForTeam(r.Context(), id)
	h.list(w, r, rows, err)
}

// OnLeaveToday handles GET /leaves/team/on-leave
func (h *Handler) OnLeaveToday(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.OnLeaveToday(r.Context(), id))
}
