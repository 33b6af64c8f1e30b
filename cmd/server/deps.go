package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/config"
	"github.com/covidtimeseries/metadata/internal/handler"
	"github.com/covidtimeseries/metadata/internal/middleware"
	"github.com/covidtimeseries/metadata/internal/pkg/cache"
	"github.com/covidtimeseries/metadata/internal/pkg/circuitbreaker"
	"github.com/covidtimeseries/metadata/internal/registry"
	"github.com/covidtimeseries/metadata/internal/service"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Redis is nil when the response cache is disabled
	Redis *cache.RedisDB
	Cache *cache.Cache

	Registry *registry.Client
	Breaker  *circuitbreaker.CircuitBreaker

	MetadataService *service.MetadataService

	// RateLimiter is nil unless rate limiting is enabled
	RateLimiter *middleware.RateLimitMiddleware

	Handlers *Handlers
}

// Handlers holds all HTTP handlers
type Handlers struct {
	Health   *handler.HealthHandler
	Metadata *handler.MetadataHandler
}

// initDependencies wires the registry client, the optional cache, the
// circuit breaker, the service and the handlers
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	client, err := registry.New(registry.Config{
		Endpoint:  cfg.Registry.Endpoint,
		Timeout:   cfg.Registry.Timeout,
		UserAgent: cfg.Registry.UserAgent,
		Logger:    logger.Named("registry"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}
	deps.Registry = client

	var responseCache service.ResponseCache
	var cachePinger handler.Pinger
	if cfg.Cache.Enabled {
		redisDB, err := cache.NewRedis(ctx, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		deps.Redis = redisDB
		deps.Cache = cache.NewCache(redisDB, cfg.Cache.TTL, cfg.Cache.Prefix)
		responseCache = deps.Cache
		cachePinger = deps.Cache
	} else {
		logger.Info("response cache disabled")
	}

	if cfg.RateLimit.Enabled && deps.Redis != nil {
		deps.RateLimiter = middleware.NewRateLimitMiddleware(deps.Redis.Client, logger.Named("ratelimit"), middleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
			Prefix: cfg.Cache.Prefix + "ratelimit:",
		})
	}

	deps.Breaker = service.NewRegistryBreaker(cfg.CircuitBreaker, logger)
	deps.MetadataService = service.NewMetadataService(client, responseCache, deps.Breaker, logger.Named("service"))

	deps.Handlers = &Handlers{
		Health:   handler.NewHealthHandler(cachePinger, deps.Breaker, client.Endpoint(), version),
		Metadata: handler.NewMetadataHandler(deps.MetadataService, logger),
	}

	return deps, nil
}

// Close releases external connections
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("failed to close Redis", zap.Error(err))
		}
	}
}
