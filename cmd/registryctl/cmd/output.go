package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	apperrors "github.com/covidtimeseries/metadata/internal/pkg/errors"
)

// printResult writes v as indented JSON. With a selector, only the values
// the JSONPath expression matches are written, one document per match.
func printResult(w io.Writer, v any, selector string) error {
	if selector == "" {
		return writeJSON(w, v)
	}

	x, err := jp.ParseString(selector)
	if err != nil {
		return fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data, err := oj.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse result: %w", err)
	}

	matches := x.Get(data)
	if len(matches) == 0 {
		return fmt.Errorf("jsonpath '%s' matched nothing", selector)
	}
	for _, m := range matches {
		if err := writeJSON(w, m); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe renders err for the terminal. Application errors show their
// description followed by the underlying cause.
func describe(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Err != nil {
		return fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
	}
	return appErr.Message
}
