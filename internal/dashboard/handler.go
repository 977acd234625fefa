package dashboard

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

// TeamSummary handles GET /attendance/team/summary
func (h *Handler) TeamSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrUnauthorized)
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.TeamSummary(r.Context(), id))
}

// TeamToday handles GET /attendance/team/today/details
func (h *Handler) TeamToday(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrUnauthorized)
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.TeamToday(r.Context(), id))
}
