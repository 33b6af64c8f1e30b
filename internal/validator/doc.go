// Package validator validates request parameters before they reach the
// registry.
//
// It wraps go-playground/validator with human-readable messages and one
// custom tag, "option_filter", accepting the option filter names
// understood by the options package.
//
//	if err := validator.Validate(req); err != nil {
//	    // err is a validator.ValidationErrors
//	}
package validator
