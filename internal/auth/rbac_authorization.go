package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/transport"
)

// RoleAuthorization gates routes on an allow-list of roles.
type RoleAuthorization struct {
	*transport.BaseHandler
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

func (ra *RoleAuthorization) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				ra.WriteAppError(w, r, internal.ErrUnauthorized)
				return
			}

			if !id.HasRole(roles...) {
				ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", id.UserID,
					"role", id.Role,
					"allowed_roles", roles)
				ra.WriteAppError(w, r, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
