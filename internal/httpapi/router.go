package httpapi

import (
	"net/http"
	"time"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/MrEthical07/adminAuth/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Options wires the router.
type Options struct {
	Engine *adminAuth.Engine
	Logger zerolog.Logger

	// AllowedOrigins feeds CORS. Empty disables cross-origin access.
	AllowedOrigins []string

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// RequestTimeout bounds each request's context. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP surface for opts.Engine.
func NewRouter(opts Options) http.Handler {
	h := &handlers{engine: opts.Engine}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(requestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(clientIP)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/admin-user", func(r chi.Router) {
		r.Post("/claimed", h.claimed)
		r.Post("/exists", h.exists)
		r.Post("/request-verification", h.requestVerification)
		r.Post("/verify-email", h.verifyEmail)
		r.Post("/login", h.login)
		r.Post("/refresh-session", h.refreshSession)

		r.With(middleware.RequireIdentity(opts.Engine)).Post("/set-password", h.setPassword)
		r.With(middleware.RequireSession(opts.Engine)).Get("/details", h.details)
	})

	return r
}
