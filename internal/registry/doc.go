// Package registry is the client for the metadata registry's GraphQL API.
//
// Every fetch follows the same linear pipeline:
//
//	Execute (POST {"query", "variables"}) -> ValidateResponse -> first edge node
//
// The three domain queries (distribution, dataset specification,
// conceptual domain) are fixed documents. They are checked against an
// embedded subset of the registry schema when the client is built, so a
// typo in a selection set fails at startup instead of on first use.
//
// # Errors
//
// Execute returns raw causes: transport errors, *StatusError for non-2xx
// replies, or a decode error. ValidateResponse returns *GraphQLError or
// ErrEmptyResult. The domain queries wrap any of these in a single
// *apperrors.AppError whose message names the fetch that failed.
package registry
