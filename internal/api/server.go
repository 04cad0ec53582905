package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/smartaid/medtrack/internal/api/auth"
	"github.com/smartaid/medtrack/internal/api/handler"
	"github.com/smartaid/medtrack/internal/cache"
	"github.com/smartaid/medtrack/internal/config"
	"github.com/smartaid/medtrack/internal/notify"
	"github.com/smartaid/medtrack/internal/pill"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, appCache *cache.Cache, cfg *config.Config, registry *notify.Registry, dispatcher *notify.Dispatcher, identifier *pill.Identifier) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, appCache, cfg, registry, dispatcher, identifier)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/push", h.HealthCheckPush)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth (no token required)
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)

		// Everything else requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(cfg.JWTSecret))

			r.Get("/auth/me", h.Me)

			// Medication schedule
			r.Get("/medications", h.ListMedications)
			r.Post("/medications", h.CreateMedication)
			r.Get("/medications/{id}", h.GetMedication)
			r.Put("/medications/{id}", h.UpdateMedication)
			r.Delete("/medications/{id}", h.DeleteMedication)

			// Dose logs
			r.Get("/logs", h.ListLogs)
			r.Post("/logs", h.CreateLog)
			r.Get("/logs/today", h.ListTodayLogs)

			// Adherence stats
			r.Get("/stats", h.GetStats)

			// Pill scanning
			r.Post("/identify-pill", h.IdentifyPill)

			// Push notifications
			r.Get("/notifications/vapid-public-key", h.VAPIDPublicKey)
			r.Post("/notifications/subscribe", h.Subscribe)
			r.Post("/notifications/unsubscribe", h.Unsubscribe)
			r.Post("/notifications/test", h.TestNotification)

			// Surveys
			r.Get("/surveys", h.ListSurveys)
			r.Post("/surveys", h.CreateSurvey)
			r.Get("/surveys/log/{logId}", h.GetSurveyByLog)

			// Caregivers
			r.Get("/caregivers", h.ListCaregivers)
			r.Post("/caregivers", h.CreateCaregiver)
			r.Put("/caregivers/{id}", h.UpdateCaregiver)
			r.Delete("/caregivers/{id}", h.DeleteCaregiver)
		})
	})

	return r
}
