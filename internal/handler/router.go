package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups everything the router dispatches to.
type Services struct {
	Auth       *service.AuthService
	Leads      *service.LeadService
	Activities *service.ActivityService
	Cards      *service.BusinessCardService
	Dashboard  *service.DashboardService

	// Store is checked by /healthz. Optional.
	Store Pinger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, corsOrigins []string, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(corsOrigins))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", authRegisterHandler(svc.Auth, logger))
		r.Post("/auth/login", authLoginHandler(svc.Auth, logger))

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(svc.Auth, logger))

			r.Get("/auth/me", authMeHandler())

			r.Post("/leads", createLeadHandler(svc.Leads, logger))
			r.Get("/leads", listLeadsHandler(svc.Leads, logger))
			r.Get("/leads/{leadId}", getLeadHandler(svc.Leads, logger))
			r.Put("/leads/{leadId}", updateLeadHandler(svc.Leads, logger))
			r.Patch("/leads/{leadId}/stage", setLeadStageHandler(svc.Leads, logger))
			r.Delete("/leads/{leadId}", deleteLeadHandler(svc.Leads, logger))
			r.Get("/leads/{leadId}/activities", listLeadActivitiesHandler(svc.Activities, logger))

			r.Post("/activities", createActivityHandler(svc.Activities, logger))

			r.Post("/business-card", upsertBusinessCardHandler(svc.Cards, logger))
			r.Get("/business-card", getBusinessCardHandler(svc.Cards, logger))

			r.Get("/dashboard/stats", dashboardStatsHandler(svc.Dashboard, logger))
		})
	})

	return r
}

// corsMiddleware allows every origin by default. Credentials are only
// allowed when the origins are listed explicitly.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "crm-api", Status: "healthy", LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			err := store.Ping(r.Context())
			h := domain.ServiceHealth{
				Name:        "mongodb",
				Status:      "healthy",
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			}
			if err != nil {
				logger.Warn("healthz: store ping failed", zap.Error(err))
				h.Status = "unhealthy"
				h.Error = err.Error()
			}
			services = append(services, h)
		}

		overall, status := "healthy", http.StatusOK
		for _, s := range services {
			if s.Status == "unhealthy" {
				overall, status = "unhealthy", http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, status, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
