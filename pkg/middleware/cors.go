package middleware

import (
	"net/http"

	"blog-admin-backend/pkg/config"

	"github.com/go-chi/cors"
)

// CORS builds the CORS middleware. Credentials must be allowed so the
// browser sends the session cookie, which in turn rules out a wildcard
// origin outside development.
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodPatch,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
			"Cache-Control",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}

	if cfg.IsDevelopment() || (len(cfg.AllowedOrigins) > 0 && cfg.AllowedOrigins[0] == "*") {
		corsOptions.AllowedOrigins = []string{"*"}
		// AllowCredentials cannot be combined with a wildcard origin
		corsOptions.AllowCredentials = false
	}

	return cors.Handler(corsOptions)
}
