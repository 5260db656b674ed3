package utils

import (
	"strconv"
	"strings"
)

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Returns nil on an empty or all whitespace string
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IntOrNil parses a form value. Blank input is nil, anything else must be an integer.
func IntOrNil(s string) (*int, error) {
	trimmed := StringOrNil(s)
	if trimmed == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*trimmed)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
