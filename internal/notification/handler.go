package notification

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/transport"
	"github.com/frahmantamala/hrms/pkg/logger"
	"github.com/gorilla/websocket"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Auth     Authenticator
	Hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(svc ServiceAPI, authn Authenticator, hub *Hub) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
		Auth:        authn,
		Hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, internal.ErrUnauthorized)
		return nil, false
	}
	return id, true
}

// List handles GET /notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Unread(r.Context(), id.UserID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*Notification{}
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// Count handles GET /notifications/inbox/count
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, CountResponse{Count: h.Service.UnreadCount(r.Context(), id.UserID)})
}

// MarkRead handles PUT /notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	nid, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.MarkRead(r.Context(), id.UserID, nid); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllRead handles PUT /notifications/read-all
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	n, err := h.Service.MarkAllRead(r.Context(), id.UserID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "updated": n})
}

// ServeWS handles GET /ws?token=<jwt>. The token is checked before the upgrade.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	id, err := h.Auth.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.From(r.Context()).Warn("websocket upgrade failed", "user_id", id.UserID, "error", err)
		return
	}
	h.Hub.Serve(conn, id.UserID)
}
