package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-analyzer/docs"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/handler"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-analyzer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/observability"
	"github.com/johnquangdev/meeting-analyzer/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	"github.com/johnquangdev/meeting-analyzer/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-analyzer/pkg/validator"
)

// multipart framing on top of the file itself
const uploadOverheadBytes = 1 << 20

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.IsProduction(), opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("📦 Connecting to database...", zap.String("driver", cfg.Database.Driver))
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	p, err := newPipeline(ctx, cfg, db, logger, metrics)
	if err != nil {
		return err
	}
	defer p.Close()

	reconciler := analysis.NewReconciler(
		repository.NewMeetingRepository(db),
		repository.NewAnalysisRepository(db),
		p.locker,
		logger,
		metrics,
	)
	if err := reconciler.Start(cfg.Analysis.ReconcileCron); err != nil {
		return err
	}
	defer reconciler.Stop(context.Background())
	logger.Info("🔧 Status reconciler scheduled", zap.String("schedule", cfg.Analysis.ReconcileCron))

	e := newEcho(cfg, logger)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, 0)
	router := handler.NewRouter(
		cfg,
		handler.NewAnalysisController(p.service, logger),
		func(writeError func(c echo.Context, err error) error) echo.MiddlewareFunc {
			return httpmw.EchoAuth(jwtManager, writeError)
		},
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		p.checks,
	)
	router.Setup(e)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("✅ Server stopped gracefully")
	return nil
}

func newEcho(cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgvalidator.New()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http.request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.Server.MaxUploadBytes+uploadOverheadBytes, 10) + "B"))
	return e
}
