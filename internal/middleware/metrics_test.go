package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(NewMetricsMiddleware(DefaultMetricsConfig()).Handler())
	app.Get("/api/v1/metrics-test/:uuid", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("uuid"))
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("healthy")
	})

	counter := httpRequestsTotal.WithLabelValues("GET", "/api/v1/metrics-test/:uuid", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/metrics-test/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))

	healthBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200"))
	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, healthBefore, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")))
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	app := fiber.New()
	app.Use(NewMetricsMiddleware(DefaultMetricsConfig()).Handler())

	counter := httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	resp, err := app.Test(httptest.NewRequest("GET", "/no/such/route", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
