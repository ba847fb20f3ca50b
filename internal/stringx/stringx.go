// Package stringx holds the small string helpers shared by the language
// parsers and the database loader.
package stringx

import (
	"strings"
	"unicode"
)

// IsBlank returns true if the string is empty or contains only whitespace.
func IsBlank(s string) bool {
	if len(s) == 0 {
		return true
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsNotBlank returns true if the string contains non-whitespace characters.
func IsNotBlank(s string) bool {
	return !IsBlank(s)
}

// FirstField returns the first whitespace-delimited field of s, or "".
func FirstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// ContainsUpper returns true if s contains at least one uppercase letter.
// The resolver uses this to classify function declarations.
func ContainsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// SplitLines splits a string into lines, normalizing \r\n and \r endings.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// FirstNonBlank returns the first non-blank string from the provided
// strings, or "" when all are blank.
func FirstNonBlank(candidates ...string) string {
	for _, s := range candidates {
		if IsNotBlank(s) {
			return s
		}
	}
	return ""
}
