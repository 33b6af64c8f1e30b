package registry

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"

	apperrors "github.com/covidtimeseries/metadata/internal/pkg/errors"
)

// ErrEmptyResult is returned when the addressed root collection has no edges
var ErrEmptyResult = errors.New("registry returned no results")

// GraphQLError carries the error list of a GraphQL response
type GraphQLError struct {
	Errors gqlerror.List
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("registry returned %d graphql error(s): %s", len(e.Errors), e.Errors.Error())
}

// StatusError is returned when the registry answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("registry responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("registry responded with status %d: %s", e.StatusCode, e.Body)
}

// wrapFetchError normalises any fetch failure into the application error
// type. An empty result is a not-found; everything else is reported as a
// registry failure.
func wrapFetchError(description string, err error) error {
	if errors.Is(err, ErrEmptyResult) {
		return apperrors.NotFound(description).WithError(err)
	}
	return apperrors.RegistryUnavailable(description).WithError(err)
}
