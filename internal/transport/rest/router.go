package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/account"
	"github.com/frahmantamala/hr-administration/internal/audit"
	"github.com/frahmantamala/hr-administration/internal/auth"
	"github.com/frahmantamala/hr-administration/internal/candidate"
	"github.com/frahmantamala/hr-administration/internal/transport/middleware"
	"github.com/frahmantamala/hr-administration/internal/transport/swagger"
)

// Handlers groups the HTTP handlers mounted under /api/v1. A nil handler leaves its routes out.
type Handlers struct {
	Auth      *auth.Handler
	Account   *account.Handler
	Audit     *audit.Handler
	Candidate *candidate.Handler
}

type Options struct {
	DB             *sql.DB
	Driver         string
	AllowedOrigins string
	OpenAPIPath    string
	Metrics        internal.MetricsConfig
	Gatherer       prometheus.Gatherer
	Registerer     prometheus.Registerer
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	healthHandler := NewHealthHandler(opts.DB, opts.Driver)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID(opts.Logger))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	if opts.Metrics.Enabled && opts.Registerer != nil {
		router.Use(middleware.NewHTTPMetrics(opts.Registerer).Middleware)
		router.Handle(opts.Metrics.Path, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.OpenAPIPath != "" {
		router.Get(swagger.SpecRoute, swagger.SpecHandler(opts.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Account != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequirePermissions(auth.PermManageAccounts))
					ar.Post("/accounts", h.Account.CreateAccount)
					ar.Get("/accounts", h.Account.ListAccounts)
					ar.Post("/accounts/import", h.Account.ImportAccounts)
					ar.Post("/accounts/bulk-delete", h.Account.DeleteAccounts)
					ar.Get("/accounts/{id}", h.Account.GetAccount)
					ar.Patch("/accounts/{id}", h.Account.UpdateAccount)
					ar.Delete("/accounts/{id}", h.Account.DeleteAccount)
					ar.Put("/accounts/{id}/password", h.Account.ChangePassword)
					ar.Put("/accounts/{id}/groups", h.Account.SetGroups)
					ar.Put("/accounts/{id}/permissions", h.Account.SetPermissions)
					ar.Delete("/accounts/{id}/purge", h.Account.PurgeAccount)
				})
			}

			if h.Audit != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequirePermissions(auth.PermViewAudit))
					ar.Get("/audit", h.Audit.ListEntries)
					ar.Get("/accounts/{id}/audit", h.Audit.ListAccountEntries)
				})
			}

			if h.Candidate != nil {
				pr.Route("/candidates", func(cr chi.Router) {
					cr.Use(h.Auth.RequirePermissions(auth.PermManageCandidates))
					cr.Post("/", h.Candidate.CreateCandidate)
					cr.Get("/", h.Candidate.ListCandidates)
					cr.Post("/validate", h.Candidate.ValidateCandidate)
					cr.Get("/{id}", h.Candidate.GetCandidate)
					cr.Put("/{id}", h.Candidate.UpdateCandidate)
					cr.Delete("/{id}", h.Candidate.DeleteCandidate)
				})
			}
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		status, body := internal.NewNotFoundError("route not found", internal.ErrCodeInvalidRequest).ToHTTPResponse()
		writeJSON(w, status, body)
	})
}
