package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/config"
	"github.com/covidtimeseries/metadata/internal/registry"
	"github.com/covidtimeseries/metadata/internal/testutil"
)

const testUUID = testutil.TestUUID

func testConfig(endpoint string) *config.Config {
	return &config.Config{
		Server:         config.ServerConfig{Host: "127.0.0.1", Port: 0, Env: "test"},
		Registry:       config.RegistryConfig{Endpoint: endpoint, Timeout: 2 * time.Second},
		CircuitBreaker: config.CircuitBreakerConfig{MaxFailures: 5, Timeout: time.Minute},
		CORS:           config.CORSConfig{AllowOrigins: []string{"*"}},
		Cache:          config.CacheConfig{TTL: time.Minute, Prefix: "test:"},
	}
}

// newTestServer wires the full app against a fake registry that counts requests
func newTestServer(t *testing.T, cfg func(*config.Config)) (*Dependencies, func(path string) (*http.Response, []byte), *testutil.RegistryServer) {
	t.Helper()

	registrySrv := testutil.NewRegistryServer(t)

	c := testConfig(registrySrv.URL)
	if cfg != nil {
		cfg(c)
	}

	deps, err := initDependencies(context.Background(), c, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	app := newApp(c, deps, zap.NewNop(), false)
	get := func(path string) (*http.Response, []byte) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), 5000)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, body
	}
	return deps, get, registrySrv
}

func TestServer_DistributionEndpoints(t *testing.T) {
	_, get, _ := newTestServer(t, nil)

	resp, body := get("/api/v1/distributions/" + testUUID)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = get("/api/v1/distributions/" + testUUID + "/options?filter=number")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var options struct {
		Data []map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &options))
	require.Len(t, options.Data, 1)
	assert.Equal(t, "de-number", options.Data[0]["value"])
	assert.Equal(t, "Confirmed cases", options.Data[0]["text"])

	resp, body = get("/api/v1/distributions/" + testUUID + "/paths")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var paths struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &paths))
	assert.Equal(t, map[string]string{"de-number": "confirmed", "de-values": "state"}, paths.Data)
}

func TestServer_CacheServesRepeatLookups(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	deps, get, registrySrv := newTestServer(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Cache.Host = mr.Host()
		c.Cache.Port = port
	})
	require.NotNil(t, deps.Cache)

	for i := 0; i < 3; i++ {
		resp, _ := get("/api/v1/distributions/" + testUUID)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, registrySrv.Calls())
	assert.True(t, mr.Exists("test:distribution:"+testUUID))

	resp, body := get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"redis":"healthy"`)
}

func TestServer_DatasetAndConceptualDomain(t *testing.T) {
	_, get, registrySrv := newTestServer(t, nil)

	resp, body := get("/api/v1/dataset-specifications/" + testUUID)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"Daily counts"`)

	resp, body = get("/api/v1/conceptual-domains/4711")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var cd map[string]any
	require.NoError(t, json.Unmarshal(body, &cd))
	assert.Equal(t, "4711", cd["id"])

	registrySrv.SetEmpty(registry.RootConceptualDomains)
	resp, body = get("/api/v1/conceptual-domains/4712")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Could not fetch conceptual domain metadata")
}

func TestServer_RateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	deps, get, _ := newTestServer(t, func(c *config.Config) {
		c.Cache.Enabled = true
		c.Cache.Host = mr.Host()
		c.Cache.Port = port
		c.RateLimit = config.RateLimitConfig{Enabled: true, Max: 2, Window: time.Minute}
	})
	require.NotNil(t, deps.RateLimiter)

	for i := 0; i < 2; i++ {
		resp, _ := get("/api/v1/distributions/" + testUUID + "/paths")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := get("/api/v1/distributions/" + testUUID + "/paths")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_UnknownRoute(t *testing.T) {
	_, get, _ := newTestServer(t, nil)

	resp, body := get("/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Equal(t, "Not Found", errBody["error"])
}

func TestServer_MetricsEndpoint(t *testing.T) {
	_, get, _ := newTestServer(t, nil)

	_, _ = get("/api/v1/distributions/" + testUUID)
	resp, body := get("/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "metadata_registry_requests_total")
	assert.Contains(t, string(body), "metadata_http_requests_total")
}

func TestInitDependencies_CacheUnreachable(t *testing.T) {
	c := testConfig("http://127.0.0.1:1/graphql")
	c.Cache.Enabled = true
	c.Cache.Host = "127.0.0.1"
	c.Cache.Port = 1

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := initDependencies(ctx, c, zap.NewNop())
	assert.Error(t, err)
}
