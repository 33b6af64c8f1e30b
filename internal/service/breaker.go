package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/config"
	"github.com/covidtimeseries/metadata/internal/pkg/circuitbreaker"
	apperrors "github.com/covidtimeseries/metadata/internal/pkg/errors"
	"github.com/covidtimeseries/metadata/internal/pkg/metrics"
)

// RegistryBreakerName labels the registry circuit in logs and metrics
const RegistryBreakerName = "registry"

// NewRegistryBreaker builds the circuit breaker guarding registry calls.
// Only upstream failures count against it; a missing entity or a caller
// giving up does not.
func NewRegistryBreaker(cfg config.CircuitBreakerConfig, logger *zap.Logger) *circuitbreaker.CircuitBreaker {
	metrics.SetCircuitState(RegistryBreakerName, int(circuitbreaker.StateClosed))

	return circuitbreaker.New(circuitbreaker.Config{
		Name:        RegistryBreakerName,
		MaxFailures: cfg.MaxFailures,
		Timeout:     cfg.Timeout,
		IsFailure:   IsRegistryFailure,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetCircuitState(name, int(to))
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// IsRegistryFailure reports whether err means the registry misbehaved
func IsRegistryFailure(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.IsNotFound(err) || apperrors.IsValidation(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
