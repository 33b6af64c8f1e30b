// Package errors provides the application error type for the metadata service.
//
// Every failure that reaches a caller, whether a registry transport error,
// a GraphQL error list or an empty result set, is normalised into an
// AppError carrying:
//   - a code used for classification and HTTP status mapping
//   - a human-readable description (Message)
//   - the original cause (Err), reachable with errors.Is / errors.As
//
// # Error Types
//
//   - NotFound: the registry answered but matched nothing (404)
//   - Validation: invalid request input (400)
//   - RegistryUnavailable: transport, status or GraphQL failure (502)
//   - ServiceUnavailable: registry calls are short-circuited (503)
//   - Internal: unexpected failure (500)
//
// # Usage
//
//	return apperrors.RegistryUnavailable("Could not fetch distribution metadata").WithError(err)
//
//	if apperrors.IsNotFound(err) {
//	    // Handle not found
//	}
package errors
