package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/hr-administration/internal"
	"github.com/frahmantamala/hr-administration/internal/account"
	accountPostgres "github.com/frahmantamala/hr-administration/internal/account/postgres"
	"github.com/frahmantamala/hr-administration/internal/audit"
	auditPostgres "github.com/frahmantamala/hr-administration/internal/audit/postgres"
	"github.com/frahmantamala/hr-administration/internal/auth"
	"github.com/frahmantamala/hr-administration/internal/candidate"
	candidatePostgres "github.com/frahmantamala/hr-administration/internal/candidate/postgres"
	"github.com/frahmantamala/hr-administration/internal/core/events"
	"github.com/frahmantamala/hr-administration/internal/transport"
	"github.com/frahmantamala/hr-administration/internal/transport/rest"
	"github.com/frahmantamala/hr-administration/internal/transport/swagger"
	"github.com/frahmantamala/hr-administration/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *Database
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		return nil
	})

	err = g.Wait()
	if cerr := deps.DB.Close(); cerr != nil {
		deps.Logger.Error("database close error", "error", cerr)
	}
	if err != nil {
		return err
	}

	deps.Logger.Info("server stopped")
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if config.Server.OpenAPIPath != "" {
		if _, err := swagger.LoadSpec(context.Background(), config.Server.OpenAPIPath); err != nil {
			lg.Warn("openapi document not served", "path", config.Server.OpenAPIPath, "error", err)
			config.Server.OpenAPIPath = ""
		}
	}

	db, err := initDB(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.SQL, config.Database.Driver),
	)

	eventBus := events.NewEventBus(lg)
	registerAccountSubscribers(eventBus, lg)

	auditWriter := auditPostgres.NewWriter(audit.NewMetrics(registry), lg)
	accountService := account.NewService(
		accountPostgres.NewAccountRepository(db.Gorm, auditWriter),
		eventBus,
		config.Security.BCryptCost,
		lg,
	)
	auditService := audit.NewService(auditPostgres.NewReader(db.SQLX), lg)
	candidateService := candidate.NewService(candidatePostgres.NewCandidateRepository(db.Gorm), lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(accountService, tokenGen, config.Security.BCryptCost, lg)

	base := transport.NewBaseHandler(lg)
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:      auth.NewHandler(base, authService),
		Account:   account.NewHandler(base, accountService),
		Audit:     audit.NewHandler(base, auditService),
		Candidate: candidate.NewHandler(base, candidateService),
	}, rest.Options{
		DB:             db.SQL,
		Driver:         config.Database.Driver,
		AllowedOrigins: config.Server.AllowedOrigins,
		OpenAPIPath:    config.Server.OpenAPIPath,
		Metrics:        config.Observability.Metrics,
		Gatherer:       registry,
		Registerer:     registry,
		Logger:         lg,
	})

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   router,
		EventBus: eventBus,
		Logger:   lg,
	}, nil
}
