package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newLoggedApp(t *testing.T) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	app := fiber.New()
	app.Use(RequestID())
	app.Use(NewLoggerMiddleware(DefaultLoggerConfig(zap.New(core))).Handler())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not Found"})
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream down")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("healthy")
	})
	return app, logs
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		path   string
		status int
		level  zapcore.Level
	}{
		{path: "/ok", status: fiber.StatusOK, level: zapcore.InfoLevel},
		{path: "/missing", status: fiber.StatusNotFound, level: zapcore.WarnLevel},
		{path: "/broken", status: fiber.StatusBadGateway, level: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			app, logs := newLoggedApp(t)

			req := httptest.NewRequest("GET", tt.path+"?filter=number", nil)
			req.Header.Set(HeaderRequestID, "req-1")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			entries := logs.FilterMessage("request completed").All()
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tt.level, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, "req-1", fields["request_id"])
			assert.Equal(t, tt.path, fields["path"])
			assert.Equal(t, "filter=number", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestLoggerMiddleware_SkipsHealth(t *testing.T) {
	app, logs := newLoggedApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, logs.Len())
}
