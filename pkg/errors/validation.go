package errors

import (
	"math"
	"regexp"
)

// paramNameRegex matches parameter names usable in study files and the API.
var paramNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateParamName validates the name of a model parameter.
//
// Names must look like identifiers: a letter or underscore followed by
// letters, digits or underscores, at most 64 characters long.
func ValidateParamName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "parameter name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "parameter name too long (max 64 characters)")
	}
	if !paramNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid parameter name: %q", name)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite values.
// The name is used in the error message only.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %v", name, v)
	}
	return nil
}
