// Package utils provides utility functions for the application.
package utils

import "strings"

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// IsBlank reports whether the string is empty or whitespace only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsBlankPtr reports whether the string pointer is nil, empty, or whitespace only
func IsBlankPtr(s *string) bool {
	return s == nil || IsBlank(*s)
}
