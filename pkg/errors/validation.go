package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// ValidateFieldName checks a CSV column name from a schema or a command flag.
// Column names are matched verbatim against the header, so only emptiness and
// control characters are rejected.
func ValidateFieldName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidSchema, "field name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidSchema, "field name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSchema, "field name contains invalid control characters")
		}
	}
	return nil
}

// ValidateYear checks that a year filter is either a sentinel ("", "all")
// or a four-digit year.
func ValidateYear(year string) error {
	if year == "" || strings.EqualFold(year, "all") {
		return nil
	}
	if len(year) != 4 {
		return New(ErrCodeInvalidYear, "invalid year %q (want YYYY)", year)
	}
	if _, err := strconv.Atoi(year); err != nil {
		return New(ErrCodeInvalidYear, "invalid year %q (want YYYY)", year)
	}
	return nil
}

// ValidateYearRange checks that min <= max when both bounds are set.
func ValidateYearRange(min, max string) error {
	for _, y := range []string{min, max} {
		if y == "" {
			continue
		}
		if err := ValidateYear(y); err != nil {
			return err
		}
	}
	if min != "" && max != "" && min > max {
		return New(ErrCodeInvalidYear, "year range %s..%s is empty", min, max)
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a dataset URL. Only http and https are fetched.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
