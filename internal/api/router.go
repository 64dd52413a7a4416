package api

import (
	"net/http"

	"github.com/dom/personal-services-api/internal/api/handlers"
	"github.com/dom/personal-services-api/internal/api/middleware"
	"github.com/dom/personal-services-api/internal/config"
	"github.com/dom/personal-services-api/internal/metrics"
	"github.com/dom/personal-services-api/internal/ratelimit"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Limiters holds the two rate-limit scopes. Login requests are counted by
// both.
type Limiters struct {
	Global *ratelimit.Limiter
	Login  *ratelimit.Limiter
}

func NewLimiters(store ratelimit.Store, cfg *config.Config) *Limiters {
	return &Limiters{
		Global: ratelimit.NewLimiter(store, ratelimit.ScopeGlobal, cfg.RateLimitMax, cfg.RateLimitWindow),
		Login:  ratelimit.NewLimiter(store, ratelimit.ScopeLogin, cfg.LoginRateLimitMax, cfg.RateLimitWindow),
	}
}

func NewRouter(services *service.Services, limiters *Limiters, db handlers.Pinger, m *metrics.Metrics, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.RequestLog)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Handle("/metrics", m.Handler())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(services.Auth, services.Sessions, m)
	settingsHandler := handlers.NewSettingsHandler(services.Settings)
	requireSession := middleware.Auth(services.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiters.Global, m))

		r.Get("/health", healthHandler.Check)

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(limiters.Login, m)).Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", settingsHandler.Get)
			r.Patch("/", settingsHandler.Patch)
		})
	})

	return r
}
