// Package handler contains the fiber HTTP handlers of the metadata service.
//
// Handlers validate path and query parameters, call the service layer and
// render JSON. Errors are rendered as
//
//	{"error": "<status text>", "message": "<description>"}
//
// with the status taken from the *apperrors.AppError the service returned.
package handler
