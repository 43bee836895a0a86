package middleware

import (
	"net/http"
	"runtime/debug"

	"blog-admin-backend/pkg/utils"

	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a JSON 500 instead of a dropped
// connection, logging the stack.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					utils.WriteInternalServerError(w, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
