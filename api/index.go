package handler

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"blog-admin-backend/pkg/auth"
	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/handlers"
	customMiddleware "blog-admin-backend/pkg/middleware"
	"blog-admin-backend/pkg/upload"
	"blog-admin-backend/pkg/utils"
	"blog-admin-backend/pkg/webflow"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// jsonBodyLimit caps JSON request bodies. Rich text posts are large but
// nowhere near this; uploads go through their own multipart route.
const jsonBodyLimit = 1 << 20

// uploadBodySlack is headroom over the upload ceiling for multipart
// boundaries and part headers.
const uploadBodySlack = 64 << 10

// Handler is the Vercel function entry point. All API endpoints are
// served by a single chi router ("monolithic route" pattern), rebuilt
// per invocation from the process-cached config.
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()

	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerError(w, "Configuration error: "+err.Error())
		return
	}

	NewRouter(cfg).ServeHTTP(w, r)
}

// NewRouter builds the full application router for the given config.
func NewRouter(cfg *config.Config) *chi.Mux {
	log := newLogger(cfg)

	// The CMS client holds only immutable configuration; a nil client
	// means no token is configured and CMS handlers report that.
	var cms *webflow.Client
	if cfg.WebflowToken != "" {
		cms = webflow.NewClient(cfg.WebflowAPIURL, cfg.WebflowToken, log)
	}

	uploader := upload.New(cfg, cms, log)
	sessions := auth.NewService(cfg.AdminPassword, cfg.SessionSecret, cfg.IsProduction())

	router := chi.NewRouter()
	setupMiddleware(router, cfg, log)
	setupRoutes(router, cfg, cms, uploader, sessions)
	return router
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// setupMiddleware wires the global middleware chain.
func setupMiddleware(router *chi.Mux, cfg *config.Config, log zerolog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(log))
	router.Use(customMiddleware.Recovery(log))

	router.Use(customMiddleware.CORS(cfg))

	// Vercel functions are time-limited; leave a few seconds of buffer
	router.Use(middleware.Timeout(25 * time.Second))

	router.Use(middleware.Compress(5))

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes registers all API endpoints.
func setupRoutes(router *chi.Mux, cfg *config.Config, cms *webflow.Client, uploader upload.Uploader, sessions *auth.Service) {
	authHandler := handlers.NewAuthHandler(cfg, sessions)
	postsHandler := handlers.NewPostsHandler(cfg, cms)
	referenceHandler := handlers.NewReferenceHandler(cfg, cms)
	uploadHandler := handlers.NewUploadHandler(cfg, uploader)

	router.Get("/", authHandler.HealthCheck)

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Get("/check", authHandler.Check)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		// Everything touching the CMS sits behind the session gate
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.RequireSession(sessions))

			r.Route("/posts", func(r chi.Router) {
				r.Use(customMiddleware.ContentTypeJSON)
				r.Use(customMiddleware.MaxBodySize(jsonBodyLimit))

				r.Get("/", postsHandler.List)
				r.Post("/", postsHandler.Create)
				r.Get("/schema", postsHandler.Schema)
				r.Get("/{id}", postsHandler.Get)
				r.Patch("/{id}", postsHandler.Update)
				r.Delete("/{id}", postsHandler.Delete)
				r.Post("/{id}/publish", postsHandler.Publish)
			})

			r.Get("/categories", referenceHandler.Categories)
			r.Get("/locations", referenceHandler.Locations)

			r.With(customMiddleware.MaxBodySize(cfg.MaxUploadBytes + uploadBodySlack)).
				Post("/upload", uploadHandler.Upload)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFound(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
	})
}
