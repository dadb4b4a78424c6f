package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nattapongw/banchee/internal/auth"
)

// RequirePermissions gates a route on any of the given permissions.
// Company owners pass every check; module wildcards count. The
// services re-check before mutating, so this is the cheap first door,
// not the only one.
func RequirePermissions(permissions ...auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor := user.Actor()
			if !actor.HasAnyPermission(permissions...) {
				slog.Warn("access denied: user lacks required permissions",
					"user_id", user.ID,
					"required_permissions", permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
