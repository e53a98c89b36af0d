package errors

import (
	"strings"
	"unicode"
)

// MaxQueryLength bounds the size of a textual path query accepted from users.
const MaxQueryLength = 4096

// ValidateQueryText validates a textual path query before it is parsed.
// It rejects input that can never be a path query so the parser only sees
// printable text of bounded length.
//
// Validation rules:
//   - Query cannot be empty or whitespace-only
//   - Maximum length of MaxQueryLength bytes
//   - No control characters other than tabs
func ValidateQueryText(q string) error {
	if strings.TrimSpace(q) == "" {
		return New(ErrCodeEmptyQuery, "query cannot be empty")
	}

	if len(q) > MaxQueryLength {
		return New(ErrCodeInvalidQuery, "query too long (max %d characters)", MaxQueryLength)
	}

	for _, r := range q {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "query contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates a local file path supplied on the command line or in
// configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateCacheBackend validates the name of a statistics cache backend.
func ValidateCacheBackend(name string) error {
	switch name {
	case "file", "redis", "mongo", "none":
		return nil
	case "":
		return New(ErrCodeInvalidConfig, "cache backend cannot be empty")
	}
	return New(ErrCodeInvalidConfig, "unknown cache backend: %q (want file, redis, mongo or none)", name)
}
