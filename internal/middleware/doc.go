// Package middleware provides the fiber middleware stack of the metadata
// service: request ids, access logging, panic recovery with optional Sentry
// reporting, CORS for the browser UI, and Prometheus HTTP metrics.
//
// The server installs them in this order:
//
//	app.Use(middleware.RequestID())
//	app.Use(middleware.RecoverWithSentry(logger, sentryEnabled))
//	app.Use(middleware.NewLoggerMiddleware(middleware.DefaultLoggerConfig(logger)).Handler())
//	app.Use(middleware.NewCORSMiddleware(middleware.ProductionCORSConfig(origins)).Handler())
//	app.Use(middleware.NewMetricsMiddleware(middleware.DefaultMetricsConfig()).Handler())
package middleware
