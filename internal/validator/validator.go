package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/covidtimeseries/metadata/internal/options"
)

// V is the singleton validator instance
var V *validator.Validate

func init() {
	V = validator.New()

	if err := V.RegisterValidation("option_filter", validateOptionFilter); err != nil {
		panic(err)
	}
}

// validateOptionFilter accepts the filter names options.FilterByName resolves
func validateOptionFilter(fl validator.FieldLevel) bool {
	_, err := options.FilterByName(fl.Field().String())
	return err == nil
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validate validates a struct and returns ValidationErrors if invalid
func Validate(v any) error {
	if err := V.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) ValidationErrors {
	var validationErrors ValidationErrors

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   toJSONFieldName(e.Field()),
				Message: getErrorMessage(e),
			})
		}
	}

	return validationErrors
}

// toJSONFieldName lowercases the first letter; UUID and ID become uuid and id
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	if strings.ToUpper(field) == field {
		return strings.ToLower(field)
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "numeric":
		return "must be numeric"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "option_filter":
		return fmt.Sprintf("must be one of: %s", strings.Join(options.FilterNames, ", "))
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}
