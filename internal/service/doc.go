// Package service sits between the HTTP and CLI surfaces and the registry
// client.
//
// MetadataService normalises identifiers, serves repeat lookups from an
// optional Redis cache, collapses concurrent identical fetches and stops
// calling the registry while its circuit breaker is open. Failures reach
// callers as *apperrors.AppError values whose codes map onto HTTP statuses:
//
//   - VALIDATION_ERROR: malformed uuid, id or filter name (400)
//   - NOT_FOUND: the registry returned no matching entity (404)
//   - REGISTRY_UNAVAILABLE: transport, status or GraphQL failure (502)
//   - SERVICE_UNAVAILABLE: the circuit breaker is open (503)
//
// # Thread Safety
//
// MetadataService is safe for concurrent use from multiple goroutines.
package service
