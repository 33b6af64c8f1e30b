package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/config"
	"github.com/covidtimeseries/metadata/internal/domain"
	"github.com/covidtimeseries/metadata/internal/pkg/cache"
	"github.com/covidtimeseries/metadata/internal/pkg/circuitbreaker"
	apperrors "github.com/covidtimeseries/metadata/internal/pkg/errors"
	"github.com/covidtimeseries/metadata/internal/testutil"
)

const testUUID = testutil.TestUUID

// MockRegistry is a mock implementation of Registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) QueryDistribution(ctx context.Context, uuid string) (*domain.Distribution, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Distribution), args.Error(1)
}

func (m *MockRegistry) QueryDatasetSpecification(ctx context.Context, uuid string) (*domain.DatasetSpecification, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DatasetSpecification), args.Error(1)
}

func (m *MockRegistry) QueryConceptualDomain(ctx context.Context, id string) (*domain.ConceptualDomain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConceptualDomain), args.Error(1)
}

// failingCache reports an error on every call
type failingCache struct{}

func (failingCache) Key(kind, id string) string { return kind + ":" + id }

func (failingCache) GetJSON(context.Context, string, interface{}) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (failingCache) SetJSON(context.Context, string, interface{}) error {
	return errors.New("redis: connection refused")
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	db := cache.NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = db.Close() })
	return cache.NewCache(db, time.Minute, "test:"), mr
}

func TestNewMetadataService(t *testing.T) {
	registry := new(MockRegistry)

	svc := NewMetadataService(registry, nil, nil, nil)

	assert.NotNil(t, svc)
	assert.Equal(t, registry, svc.registry)
	assert.Nil(t, svc.cache)
	assert.Nil(t, svc.breaker)
	assert.NotNil(t, svc.logger)
}

func TestMetadataService_GetDistribution(t *testing.T) {
	t.Run("normalises the uuid before querying", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("QueryDistribution", mock.Anything, testUUID).Return(testutil.NewTestDistribution(), nil).Once()

		svc := NewMetadataService(registry, nil, nil, zap.NewNop())
		dist, err := svc.GetDistribution(context.Background(), "  6F1C2B9E-3D4A-4C5B-8E7F-0A1B2C3D4E5F ")

		require.NoError(t, err)
		assert.Equal(t, "Cases", dist.Name)
		registry.AssertExpectations(t)
	})

	t.Run("rejects a malformed uuid without calling the registry", func(t *testing.T) {
		registry := new(MockRegistry)
		svc := NewMetadataService(registry, nil, nil, zap.NewNop())

		_, err := svc.GetDistribution(context.Background(), "not-a-uuid")

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		registry.AssertNotCalled(t, "QueryDistribution", mock.Anything, mock.Anything)
	})

	t.Run("passes registry errors through", func(t *testing.T) {
		registry := new(MockRegistry)
		notFound := apperrors.NotFound("Could not fetch distribution metadata")
		registry.On("QueryDistribution", mock.Anything, testUUID).Return(nil, notFound)

		svc := NewMetadataService(registry, nil, nil, zap.NewNop())
		_, err := svc.GetDistribution(context.Background(), testUUID)

		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestMetadataService_GetDatasetSpecification(t *testing.T) {
	registry := new(MockRegistry)
	dss := &domain.DatasetSpecification{UUID: testUUID, Name: "Daily"}
	registry.On("QueryDatasetSpecification", mock.Anything, testUUID).Return(dss, nil)

	svc := NewMetadataService(registry, nil, nil, zap.NewNop())
	got, err := svc.GetDatasetSpecification(context.Background(), testUUID)

	require.NoError(t, err)
	assert.Equal(t, dss, got)

	_, err = svc.GetDatasetSpecification(context.Background(), "123")
	assert.True(t, apperrors.IsValidation(err))
}

func TestMetadataService_GetConceptualDomain(t *testing.T) {
	registry := new(MockRegistry)
	cd := &domain.ConceptualDomain{ID: "4711", Name: "States"}
	registry.On("QueryConceptualDomain", mock.Anything, "4711").Return(cd, nil)

	svc := NewMetadataService(registry, nil, nil, zap.NewNop())

	got, err := svc.GetConceptualDomain(context.Background(), " 4711 ")
	require.NoError(t, err)
	assert.Equal(t, "4711", got.ID)

	_, err = svc.GetConceptualDomain(context.Background(), "   ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestMetadataService_GetConceptualDomain_CopiesID(t *testing.T) {
	// id aliases buf the way fiber path params alias the request buffer
	buf := []byte(" 4711 ")
	id := unsafe.String(&buf[0], len(buf))

	var passed string
	registry := new(MockRegistry)
	registry.On("QueryConceptualDomain", mock.Anything, "4711").
		Run(func(args mock.Arguments) { passed = args.String(1) }).
		Return(&domain.ConceptualDomain{ID: "4711"}, nil)

	svc := NewMetadataService(registry, nil, nil, zap.NewNop())
	_, err := svc.GetConceptualDomain(context.Background(), id)
	require.NoError(t, err)

	copy(buf, " 9999 ")
	assert.Equal(t, "4711", passed)
}

func TestMetadataService_DistributionOptions(t *testing.T) {
	tests := []struct {
		filter string
		values []string
	}{
		{filter: "", values: []string{"de-number", "de-values"}},
		{filter: "all", values: []string{"de-number", "de-values"}},
		{filter: "number", values: []string{"de-number"}},
		{filter: "Values", values: []string{"de-values"}},
	}

	for _, tt := range tests {
		t.Run("filter="+tt.filter, func(t *testing.T) {
			registry := new(MockRegistry)
			registry.On("QueryDistribution", mock.Anything, testUUID).Return(testutil.NewTestDistribution(), nil)

			svc := NewMetadataService(registry, nil, nil, zap.NewNop())
			opts, err := svc.DistributionOptions(context.Background(), testUUID, tt.filter)
			require.NoError(t, err)

			var values []string
			for _, o := range opts {
				values = append(values, o.Value)
			}
			assert.Equal(t, tt.values, values)
		})
	}

	t.Run("option fields", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("QueryDistribution", mock.Anything, testUUID).Return(testutil.NewTestDistribution(), nil)

		svc := NewMetadataService(registry, nil, nil, zap.NewNop())
		opts, err := svc.DistributionOptions(context.Background(), testUUID, "number")
		require.NoError(t, err)
		require.Len(t, opts, 1)

		assert.Equal(t, domain.Option{
			Value:              "de-number",
			ID:                 "101",
			Definition:         "Confirmed cases",
			Text:               "Confirmed cases",
			AristotleTooltipID: "101",
		}, opts[0])
	})

	t.Run("unknown filter is rejected before fetching", func(t *testing.T) {
		registry := new(MockRegistry)
		svc := NewMetadataService(registry, nil, nil, zap.NewNop())

		_, err := svc.DistributionOptions(context.Background(), testUUID, "dates")

		assert.True(t, apperrors.IsValidation(err))
		registry.AssertNotCalled(t, "QueryDistribution", mock.Anything, mock.Anything)
	})
}

func TestMetadataService_DistributionPaths(t *testing.T) {
	registry := new(MockRegistry)
	registry.On("QueryDistribution", mock.Anything, testUUID).Return(testutil.NewTestDistribution(), nil)

	svc := NewMetadataService(registry, nil, nil, zap.NewNop())
	paths, err := svc.DistributionPaths(context.Background(), testUUID)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"de-number": "confirmed",
		"de-values": "state",
	}, paths)
}

func TestMetadataService_Cache(t *testing.T) {
	t.Run("second lookup is served from redis", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("QueryDistribution", mock.Anything, testUUID).Return(testutil.NewTestDistribution(), nil).Once()

		c, mr := newTestCache(t)
		svc := NewMetadataService(registry, c, nil, zap.NewNop())

		first, err := svc.GetDistribution(context.Background(), testUUID)
		require.NoError(t, err)
		assert.True(t, mr.Exists("test:distribution:"+testUUID))

		second, err := svc.GetDistribution(context.Background(), testUUID)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		registry.AssertNumberOfCalls(t, "QueryDistribution", 1)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("QueryConceptualDomain", mock.Anything, "1").
			Return(nil, apperrors.NotFound("Could not fetch conceptual domain metadata"))

		c, mr := newTestCache(t)
		svc := NewMetadataService(registry, c, nil, zap.NewNop())

		_, err := svc.GetConceptualDomain(context.Background(), "1")
		require.Error(t, err)
		assert.False(t, mr.Exists("test:conceptual_domain:1"))

		_, err = svc.GetConceptualDomain(context.Background(), "1")
		require.Error(t, err)
		registry.AssertNumberOfCalls(t, "QueryConceptualDomain", 2)
	})

	t.Run("cache errors fall through to the registry", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("QueryDistribution", mock.Anything, testUUID).Return(testutil.NewTestDistribution(), nil)

		svc := NewMetadataService(registry, failingCache{}, nil, zap.NewNop())
		dist, err := svc.GetDistribution(context.Background(), testUUID)

		require.NoError(t, err)
		assert.Equal(t, "Cases", dist.Name)
	})
}

func TestMetadataService_CircuitBreaker(t *testing.T) {
	cfg := config.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Hour}

	t.Run("opens after registry failures", func(t *testing.T) {
		registry := new(MockRegistry)
		upstream := apperrors.RegistryUnavailable("Could not fetch distribution metadata")
		registry.On("QueryDistribution", mock.Anything, testUUID).Return(nil, upstream)

		breaker := NewRegistryBreaker(cfg, zap.NewNop())
		svc := NewMetadataService(registry, nil, breaker, zap.NewNop())

		for i := 0; i < 2; i++ {
			_, err := svc.GetDistribution(context.Background(), testUUID)
			assert.True(t, apperrors.IsRegistryUnavailable(err))
		}
		assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

		_, err := svc.GetDistribution(context.Background(), testUUID)
		require.Error(t, err)
		assert.True(t, apperrors.IsServiceUnavailable(err))
		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
		registry.AssertNumberOfCalls(t, "QueryDistribution", 2)
	})

	t.Run("not found does not trip the breaker", func(t *testing.T) {
		registry := new(MockRegistry)
		registry.On("QueryDistribution", mock.Anything, testUUID).
			Return(nil, apperrors.NotFound("Could not fetch distribution metadata"))

		breaker := NewRegistryBreaker(cfg, zap.NewNop())
		svc := NewMetadataService(registry, nil, breaker, zap.NewNop())

		for i := 0; i < 5; i++ {
			_, err := svc.GetDistribution(context.Background(), testUUID)
			assert.True(t, apperrors.IsNotFound(err))
		}
		assert.Equal(t, circuitbreaker.StateClosed, breaker.State())
	})
}

func TestIsRegistryFailure(t *testing.T) {
	assert.False(t, IsRegistryFailure(nil))
	assert.False(t, IsRegistryFailure(apperrors.NotFound("x")))
	assert.False(t, IsRegistryFailure(apperrors.Validation("x")))
	assert.False(t, IsRegistryFailure(apperrors.RegistryUnavailable("x").WithError(context.Canceled)))
	assert.True(t, IsRegistryFailure(apperrors.RegistryUnavailable("x")))
	assert.True(t, IsRegistryFailure(errors.New("boom")))
}

// countingRegistry blocks distribution fetches until released
type countingRegistry struct {
	MockRegistry
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *countingRegistry) QueryDistribution(ctx context.Context, uuid string) (*domain.Distribution, error) {
	r.calls.Add(1)
	r.once.Do(func() { close(r.started) })
	<-r.release
	return testutil.NewTestDistribution(), nil
}

func TestMetadataService_CollapsesConcurrentFetches(t *testing.T) {
	registry := &countingRegistry{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewMetadataService(registry, nil, nil, zap.NewNop())

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan *domain.Distribution, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dist, err := svc.GetDistribution(context.Background(), testUUID)
			if err == nil {
				results <- dist
			}
		}()
	}

	<-registry.started
	time.Sleep(50 * time.Millisecond)
	close(registry.release)
	wg.Wait()
	close(results)

	assert.Len(t, results, callers)
	assert.Equal(t, int32(1), registry.calls.Load())
}
