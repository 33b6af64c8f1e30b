package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/covidtimeseries/metadata/internal/domain"
	"github.com/covidtimeseries/metadata/internal/options"
	"github.com/covidtimeseries/metadata/internal/pkg/circuitbreaker"
	apperrors "github.com/covidtimeseries/metadata/internal/pkg/errors"
	"github.com/covidtimeseries/metadata/internal/pkg/metrics"
)

// Cache kinds, also used as metric operation labels
const (
	KindDistribution         = "distribution"
	KindDatasetSpecification = "dataset_specification"
	KindConceptualDomain     = "conceptual_domain"
)

// Registry defines the registry queries the service depends on
type Registry interface {
	QueryDistribution(ctx context.Context, uuid string) (*domain.Distribution, error)
	QueryDatasetSpecification(ctx context.Context, uuid string) (*domain.DatasetSpecification, error)
	QueryConceptualDomain(ctx context.Context, id string) (*domain.ConceptualDomain, error)
}

// ResponseCache stores registry entities between requests
type ResponseCache interface {
	Key(kind, id string) string
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
}

// MetadataService fetches registry metadata for the HTTP and CLI surfaces
type MetadataService struct {
	registry Registry
	cache    ResponseCache
	breaker  *circuitbreaker.CircuitBreaker
	group    singleflight.Group
	logger   *zap.Logger
}

// NewMetadataService creates a new metadata service. cache and breaker are
// optional; pass nil to disable them.
func NewMetadataService(
	registry Registry,
	cache ResponseCache,
	breaker *circuitbreaker.CircuitBreaker,
	logger *zap.Logger,
) *MetadataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataService{
		registry: registry,
		cache:    cache,
		breaker:  breaker,
		logger:   logger,
	}
}

// GetDistribution fetches a distribution by uuid
func (s *MetadataService) GetDistribution(ctx context.Context, rawUUID string) (*domain.Distribution, error) {
	id, err := normalizeUUID(rawUUID)
	if err != nil {
		return nil, err
	}
	return load(ctx, s, KindDistribution, id, s.registry.QueryDistribution)
}

// GetDatasetSpecification fetches a dataset specification by uuid
func (s *MetadataService) GetDatasetSpecification(ctx context.Context, rawUUID string) (*domain.DatasetSpecification, error) {
	id, err := normalizeUUID(rawUUID)
	if err != nil {
		return nil, err
	}
	return load(ctx, s, KindDatasetSpecification, id, s.registry.QueryDatasetSpecification)
}

// GetConceptualDomain fetches a conceptual domain by registry id
func (s *MetadataService) GetConceptualDomain(ctx context.Context, rawID string) (*domain.ConceptualDomain, error) {
	id := strings.Clone(strings.TrimSpace(rawID))
	if id == "" {
		return nil, apperrors.Validation("conceptual domain id is required")
	}
	return load(ctx, s, KindConceptualDomain, id, s.registry.QueryConceptualDomain)
}

// DistributionOptions fetches a distribution and maps its data elements to
// UI options, keeping only those matching the named filter.
func (s *MetadataService) DistributionOptions(ctx context.Context, rawUUID, filterName string) ([]domain.Option, error) {
	filter, err := options.FilterByName(filterName)
	if err != nil {
		return nil, apperrors.Validation(err.Error()).WithDetail("filter", filterName)
	}
	dist, err := s.GetDistribution(ctx, rawUUID)
	if err != nil {
		return nil, err
	}
	return options.DistributionOptions(dist, filter), nil
}

// DistributionPaths fetches a distribution and maps data element uuids to
// their logical paths
func (s *MetadataService) DistributionPaths(ctx context.Context, rawUUID string) (map[string]string, error) {
	dist, err := s.GetDistribution(ctx, rawUUID)
	if err != nil {
		return nil, err
	}
	return options.MapDistributionData(dist), nil
}

// load serves kind/id from the cache when possible, otherwise fetches it
// once for all concurrent callers and stores the result.
func load[T any](ctx context.Context, s *MetadataService, kind, id string, fetch func(context.Context, string) (*T, error)) (*T, error) {
	if cached, ok := cacheGet[T](ctx, s, kind, id); ok {
		return cached, nil
	}

	// Concurrent callers share the first caller's context.
	v, err, shared := s.group.Do(kind+":"+id, func() (interface{}, error) {
		result, err := s.callRegistry(ctx, func() (interface{}, error) {
			return fetch(ctx, id)
		})
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, kind, id, result)
		return result, nil
	})
	if err != nil {
		s.logger.Debug("registry fetch failed",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return nil, err
	}
	return v.(*T), nil
}

// callRegistry runs fn through the circuit breaker when one is configured
func (s *MetadataService) callRegistry(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if s.breaker == nil {
		return fn()
	}
	result, err := circuitbreaker.ExecuteWithResult(s.breaker, ctx, fn)
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil, apperrors.ServiceUnavailable("metadata registry is temporarily unavailable").WithError(err)
	}
	return result, err
}

func cacheGet[T any](ctx context.Context, s *MetadataService, kind, id string) (*T, bool) {
	if s.cache == nil {
		return nil, false
	}
	key := s.cache.Key(kind, id)

	var cached T
	found, err := s.cache.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.RecordCacheLookup(kind, metrics.CacheError)
		s.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case !found:
		metrics.RecordCacheLookup(kind, metrics.CacheMiss)
		return nil, false
	}
	metrics.RecordCacheLookup(kind, metrics.CacheHit)
	return &cached, true
}

func (s *MetadataService) cacheSet(ctx context.Context, kind, id string, value interface{}) {
	if s.cache == nil {
		return
	}
	key := s.cache.Key(kind, id)
	if err := s.cache.SetJSON(ctx, key, value); err != nil {
		s.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// normalizeUUID accepts any form google/uuid parses and returns the
// canonical lowercase hyphenated form
func normalizeUUID(raw string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperrors.Validation(fmt.Sprintf("invalid uuid %q", raw)).WithDetail("uuid", raw)
	}
	return parsed.String(), nil
}
