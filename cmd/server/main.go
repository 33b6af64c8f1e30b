package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/config"
	"github.com/covidtimeseries/metadata/internal/middleware"
	"github.com/covidtimeseries/metadata/internal/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer logger.Sync()

	sentryEnabled := cfg.Sentry.Enabled && cfg.Sentry.DSN != ""
	if sentryEnabled {
		sentryCfg := cfg.Sentry
		if sentryCfg.Release == "" {
			sentryCfg.Release = "registry-metadata@" + version
		}
		if sentryCfg.Environment == "" {
			sentryCfg.Environment = cfg.Server.Env
		}

		if err := middleware.InitSentry(sentryCfg); err != nil {
			log.Error("failed to initialize Sentry", zap.Error(err))
			sentryEnabled = false
		} else {
			log.Info("Sentry initialized",
				zap.String("environment", sentryCfg.Environment),
				zap.String("release", sentryCfg.Release),
			)
			defer middleware.FlushSentry(5 * time.Second)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := initDependencies(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	app := newApp(cfg, deps, log, sentryEnabled)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info("starting server",
			zap.String("addr", addr),
			zap.String("registry", deps.Registry.Endpoint()),
			zap.Bool("cache", deps.Cache != nil),
		)
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}

// newApp builds the fiber app with the middleware stack and all routes
func newApp(cfg *config.Config, deps *Dependencies, log *zap.Logger, sentryEnabled bool) *fiber.App {
	// Handlers wait on the registry, so the write timeout must cover its timeout.
	app := fiber.New(fiber.Config{
		AppName:               "Registry Metadata API",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.Registry.Timeout + 10*time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: cfg.IsProduction(),
		EnablePrintRoutes:     cfg.IsDevelopment(),
		ErrorHandler:          errorHandler(log, sentryEnabled),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RecoverWithSentry(log, sentryEnabled))
	app.Use(middleware.NewLoggerMiddleware(middleware.DefaultLoggerConfig(log)).Handler())
	app.Use(middleware.NewCORSMiddleware(middleware.ProductionCORSConfig(cfg.CORS.AllowOrigins)).Handler())
	app.Use(middleware.NewMetricsMiddleware(middleware.DefaultMetricsConfig()).Handler())

	registerRoutes(app, deps)

	return app
}

// errorHandler renders errors that escape handlers, mostly unknown routes,
// in the same shape as handler errors
func errorHandler(log *zap.Logger, sentryEnabled bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An unexpected error occurred"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request error",
				zap.Int("status", code),
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("request_id", middleware.GetRequestID(c)),
			)
			if sentryEnabled {
				sentry.CaptureException(err)
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   http.StatusText(code),
			"message": message,
		})
	}
}
