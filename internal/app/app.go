package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"plandash/internal/config"
	"plandash/internal/errors"
	"plandash/internal/infrastructure"
	customMiddleware "plandash/internal/middleware"
	"plandash/internal/services"
	handlers "plandash/internal/transport/http"
	"plandash/internal/workbook"
	"plandash/pkg/contracts"
)

const AppName = "ICATEX - Dashboard de Planificación de Producción"

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	Cache            *workbook.Cache
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
}

// NewApplication loads the configuration and creates the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger)
}

// NewApplicationWithConfig wires every component from an already loaded
// configuration
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("workbook", cfg.Workbook.Path))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateDashboardMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create dashboard metrics: %w", err)
		}
		a.Metrics = metrics
	}

	loader := workbook.NewLoader(a.Config.Workbook, a.Logger)
	a.Cache = workbook.NewCache(loader, a.Config.Workbook.Path, a.Metrics, a.Logger)

	a.DashboardService = services.NewDashboardService(a.Cache, services.SettingsFrom(a.Config), a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, contracts.BuildTime, a.Cache, a.Logger)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := errors.NewErrorHandler(a.Logger, false)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → Logger → Recoverer, timeouts per group
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errors.RecoveryMiddleware(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, errorHandler)
	pageHandler, err := handlers.NewPageHandler(a.DashboardService, contracts.Version, a.Logger, errorHandler)
	if err != nil {
		return err
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/sections", dashboardHandler.SectionRoutes())
		r.Mount("/workbook", dashboardHandler.WorkbookRoutes())
	})

	// Rendering a chart or a document can outlast the API timeout
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))
		r.Mount("/charts", dashboardHandler.ChartRoutes())
		r.Mount("/export", dashboardHandler.ExportRoutes())
		r.Mount("/sections", pageHandler.Routes())
	})

	r.Get("/", handlers.RedirectToOverview)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

// getCORSConfig returns the CORS configuration for the dashboard origins
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cors := customMiddleware.CORSConfig{
		AllowedOrigins: []string{
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
		Logger:         a.Logger,
	}

	if a.Config.Security.EnableCORS {
		cors.AllowedOrigins = append(cors.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	return cors
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	a.Logger.InfoContext(ctx, "Application started successfully", slog.String("address", url))

	if a.Config.Server.OpenBrowser {
		go a.openBrowserWhenReady(ctx, url)
	}

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck loads the workbook once so the first page view
// is served from the cache and sheet problems show up in the startup log
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	ds := a.Cache.Get(ctx)
	if !ds.Readable {
		return fmt.Errorf("workbook %s is not readable", a.Cache.Path())
	}

	summary := ds.Summary()
	for _, w := range summary.Warnings {
		infrastructure.LogWorkbookWarning(ctx, a.Logger, w.Sheet, w.Reason)
	}

	a.Logger.InfoContext(ctx, "Startup health check passed",
		slog.String("workbook", a.Cache.Path()),
		slog.Int("warnings", len(summary.Warnings)))
	return nil
}

func (a *Application) openBrowserWhenReady(ctx context.Context, url string) {
	healthURL := url + "/api/health"
	client := &http.Client{Timeout: time.Second}

	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		resp, err := client.Get(healthURL)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		if err := openBrowser(ctx, url); err != nil {
			a.Logger.WarnContext(ctx, "Failed to open browser",
				slog.String("error", err.Error()),
				slog.String("url", url))
		}
		return
	}

	a.Logger.WarnContext(ctx, "Server did not become ready for browser opening", slog.String("url", url))
}

// openBrowser opens the default browser, trying each platform method in turn
func openBrowser(ctx context.Context, url string) error {
	var lastErr error
	for _, m := range browserCommands(url) {
		cmd := exec.CommandContext(ctx, m[0], m[1:]...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

func browserCommands(url string) [][]string {
	switch runtime.GOOS {
	case "windows":
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"cmd", "/c", "start", "", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
		}
	}
}
