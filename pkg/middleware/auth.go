package middleware

import (
	"net/http"

	"blog-admin-backend/pkg/auth"
	"blog-admin-backend/pkg/utils"
)

// RequireSession short-circuits any request that does not carry a valid
// session cookie. Every CMS-touching route sits behind this gate.
func RequireSession(sessions *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAuthenticated(r) {
				utils.WriteUnauthorized(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
