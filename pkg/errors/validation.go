package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxSheetSize is the largest accepted sheet dimension.
const MaxSheetSize = 1 << 15

// ParseSize parses a "WIDTHxHEIGHT" string such as "2048x2048".
func ParseSize(s string) (w, h int, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, New(ErrCodeInvalidSize, "invalid size %q (expected WIDTHxHEIGHT, e.g. 1024x1024)", s)
	}
	w, werr := strconv.Atoi(parts[0])
	h, herr := strconv.Atoi(parts[1])
	if werr != nil || herr != nil {
		return 0, 0, New(ErrCodeInvalidSize, "invalid size %q (expected WIDTHxHEIGHT, e.g. 1024x1024)", s)
	}
	if err := ValidateSheetSize(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// ValidateSheetSize checks that both sheet dimensions are in [1, MaxSheetSize].
func ValidateSheetSize(w, h int) error {
	if w < 1 || h < 1 {
		return New(ErrCodeInvalidSize, "sheet size must be positive, got %dx%d", w, h)
	}
	if w > MaxSheetSize || h > MaxSheetSize {
		return New(ErrCodeInvalidSize, "sheet size %dx%d exceeds maximum %d", w, h, MaxSheetSize)
	}
	return nil
}

// ValidateExtrude checks the per-edge extrusion amount.
func ValidateExtrude(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "extrude must be >= 0, got %d", n)
	}
	if n > MaxSheetSize/2 {
		return New(ErrCodeInvalidInput, "extrude %d is larger than any sheet", n)
	}
	return nil
}

// ValidatePath validates a user-supplied input or output path.
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
