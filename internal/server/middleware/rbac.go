package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Workspace roles. Viewers may authenticate but are denied the activity log.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// RequireRole must be chained after Auth. A missing role is 401; a role
// outside the allowed set is 403 and is enforced before any handler runs.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"authentication required"}`, http.StatusUnauthorized)
				return
			}

			if _, match := allowed[role]; !match {
				uid, _ := UserIDFromContext(r.Context())
				log.Debug().Str("user_id", uid).Str("role", role).Str("path", r.URL.Path).Msg("rbac: access denied")
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"insufficient permissions"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
