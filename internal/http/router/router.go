package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/straye-as/presales-api/internal/auth"
	"github.com/straye-as/presales-api/internal/config"
	"github.com/straye-as/presales-api/internal/database"
	"github.com/straye-as/presales-api/internal/http/handler"
	"github.com/straye-as/presales-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/presales-api/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Proposal *handler.ProposalHandler
	Catalog  *handler.CatalogHandler
	Document *handler.DocumentHandler
	Provider *handler.ProviderHandler
	Auth     *handler.AuthHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)

		h := rt.handlers
		reviewer := rt.authMiddleware.RequireRole(auth.RoleReviewer)
		admin := rt.authMiddleware.RequireRole(auth.RoleAdmin)

		// Generation runs under its own pipeline deadline
		r.With(rt.rateLimiter.LimitGenerate).Post("/proposals/generate", h.Proposal.Generate)

		r.Group(func(r chi.Router) {
			if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
				r.Use(chimw.Timeout(timeout))
			}

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/providers", h.Provider.List)

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", h.Document.List)
				r.Post("/", h.Document.Upload)
				r.Get("/{id}", h.Document.GetByID)
				r.Delete("/{id}", h.Document.Delete)
			})

			// Proposals
			r.Route("/proposals", func(r chi.Router) {
				r.Get("/", h.Proposal.List)
				r.Get("/{id}", h.Proposal.GetByID)
				r.Put("/{id}", h.Proposal.Update)
				r.Delete("/{id}", h.Proposal.Delete)
				r.Put("/{id}/resources", h.Proposal.UpdateResources)

				// Lifecycle endpoints
				r.With(reviewer).Post("/{id}/approve", h.Proposal.Approve)
				r.With(reviewer).Post("/{id}/reject", h.Proposal.Reject)

				// Report
				r.Post("/{id}/report", h.Proposal.RenderReport)
				r.Get("/{id}/report", h.Proposal.DownloadReport)

				r.Get("/{id}/metrics", h.Proposal.Metrics)
			})

			r.Get("/learning/accuracy", h.Proposal.AccuracySummary)

			// Professional catalog
			r.Route("/professionals", func(r chi.Router) {
				r.Get("/", h.Catalog.ListProfessionals)
				r.Get("/{id}", h.Catalog.GetProfessional)
				r.With(admin).Post("/", h.Catalog.CreateProfessional)
				r.With(admin).Put("/{id}", h.Catalog.UpdateProfessional)
				r.With(admin).Delete("/{id}", h.Catalog.DeleteProfessional)
			})

			// Pricing parameters
			r.Route("/parameters", func(r chi.Router) {
				r.Get("/", h.Catalog.ListParameters)
				r.With(admin).Put("/{name}", h.Catalog.UpdateParameter)
			})
		})
	})

	return r
}
