package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/donor-crm/internal/infra/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	Access         middleware.AccessValidator
	Logger         *zap.Logger

	Health        *HealthHandler
	Auth          *AuthHandler
	Leads         *LeadHandler
	Donors        *DonorHandler
	Donations     *DonationHandler
	Communication *CommunicationHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", cfg.Health.Handle)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/leads", cfg.Leads.CaptureLead)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/refresh", cfg.Auth.Refresh)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Access))

		r.Post("/auth/logout", cfg.Auth.Logout)

		r.Route("/donors", func(r chi.Router) {
			r.Post("/", cfg.Donors.Create)
			r.Get("/", cfg.Donors.List)
			r.Get("/lapsed", cfg.Donors.Lapsed)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Donors.Get)
				r.Post("/deactivate", cfg.Donors.Deactivate)
				r.Get("/insights", cfg.Donors.Insights)
				r.Get("/communications", cfg.Donors.Communications)
				r.Post("/reconcile", cfg.Donors.Reconcile)
			})
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", cfg.Donations.List)
			r.Post("/", cfg.Donations.Record)
			r.Get("/summary", cfg.Donations.Summary)
			r.Patch("/{id}/status", cfg.Donations.UpdateStatus)
		})

		r.Route("/communications", func(r chi.Router) {
			r.Post("/", cfg.Communication.Record)
			r.Post("/{id}/send", cfg.Communication.Send)
		})
	})

	return r
}
