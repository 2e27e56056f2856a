package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/cache"
	httpapi "github.com/aussiebroadwan/specter/internal/console/http"
	"github.com/aussiebroadwan/specter/internal/console/service"
	"github.com/aussiebroadwan/specter/internal/console/store"
	"github.com/aussiebroadwan/specter/internal/console/store/drivers/sqlite"
	"github.com/aussiebroadwan/specter/internal/console/upstream"
	"github.com/aussiebroadwan/specter/pkg/cryptox"
	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/aussiebroadwan/specter/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the console and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	sealer    *cryptox.Sealer
	transport http.RoundTripper
	entra     *entra.Client
	responses *cache.Memory

	// Services
	exchangeService     *service.ExchangeService
	locator             *service.RefreshLocator
	resolver            *service.Resolver
	tokenService        *service.TokenService
	operatorService     *service.OperatorService
	scheduler           *service.Scheduler
	housekeepingService *service.HousekeepingService
	upstream            *upstream.Caller

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "specter",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	sealer, err := cryptox.LoadSealer(cfg.MasterKeyPath, masterKeyEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	if sealer.Ephemeral() {
		app.logger.Warn("no master key configured, stored secrets will be unreadable after restart",
			"hint", "set SPECTER_MASTER_KEY_PATH or "+masterKeyEnv)
	}
	app.sealer = sealer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initOutbound(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	if err := app.bootstrapOperator(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	if app.cfg.SchedulerAutostart {
		if err := app.scheduler.Start(); err != nil {
			app.logger.Error("failed to start scheduler", "error", err)
		}
	}

	app.logger.Info("specter console starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains HTTP, stops the background loops and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down specter console...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.scheduler.Stop(); err != nil && !errors.Is(err, service.ErrSchedulerNotRunning) {
		app.logger.Error("error stopping scheduler", "error", err)
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("specter console stopped")
	return nil
}

// initDatabase opens the token store and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile, sqlite.WithSealer(app.sealer))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initOutbound builds the shared transport and the token endpoint client.
func (app *Application) initOutbound() error {
	transport, err := entra.NewTransport(app.cfg.OutboundProxy)
	if err != nil {
		return fmt.Errorf("failed to configure outbound proxy: %w", err)
	}
	if transport != nil {
		app.transport = transport
	}
	if app.cfg.OutboundProxy != "" {
		app.logger.Info("outbound calls routed through proxy")
	}

	app.entra = entra.NewClient(entra.ClientConfig{
		Authority: app.cfg.EntraAuthority,
		Tenant:    app.cfg.EntraTenant,
		Timeout:   app.cfg.OutboundTimeout,
		RateLimit: app.cfg.OutboundRateLimit,
		Burst:     5,
		Transport: app.transport,
	})
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.exchangeService = &service.ExchangeService{
		Provider: app.entra,
		Store:    app.db,
	}
	app.locator = &service.RefreshLocator{Store: app.db}

	app.resolver = &service.Resolver{
		Store:          app.db,
		Exchange:       app.exchangeService,
		Locator:        app.locator,
		BrokerClientID: app.cfg.BrokerClientID,
	}
	app.tokenService = &service.TokenService{
		Store:    app.db,
		Exchange: app.exchangeService,
	}
	app.operatorService = &service.OperatorService{
		Store:  app.db,
		Issuer: "Specter",
	}

	app.scheduler = service.NewScheduler(service.SchedulerDeps{
		Store:    app.db,
		Exchange: app.exchangeService,
		Locator:  app.locator,
		Logger:   app.logger.With("component", "scheduler"),
	}, service.SchedulerConfig{
		Interval:  app.cfg.SchedulerInterval,
		Threshold: app.cfg.SchedulerThreshold,
	})

	app.responses = cache.NewMemory(app.cfg.CacheTTL)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.responses,
		app.logger.With("component", "housekeeping"),
		app.cfg.HousekeepingInterval,
	)

	app.upstream = upstream.NewCaller(app.resolver, app.responses, app.transport, app.cfg.OutboundTimeout)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.Resolver = app.resolver
	router.Scheduler = app.scheduler
	router.OperatorService = app.operatorService
	router.Upstream = app.upstream
	router.Cache = app.responses
	if app.cfg.GraphBaseURL != "" {
		router.GraphBaseURL = app.cfg.GraphBaseURL
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// bootstrapOperator creates the admin operator on an empty database. A
// generated key is logged once and never again.
func (app *Application) bootstrapOperator(ctx context.Context) error {
	ctx = slogx.WithContext(ctx, app.logger)

	key, err := app.operatorService.Bootstrap(ctx, app.cfg.AdminAPIKey)
	if err != nil {
		return fmt.Errorf("failed to bootstrap operator: %w", err)
	}
	if key != "" && app.cfg.AdminAPIKey == "" {
		app.logger.Warn("generated admin API key, store it now", "api_key", key)
	}
	return nil
}
