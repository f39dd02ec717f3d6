package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches #RGB, #RRGGBB and #RRGGBBAA colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

// colorNameRegex matches Graphviz color names such as "green" or "/x11/green".
var colorNameRegex = regexp.MustCompile(`^(/[a-z0-9]+/)?[A-Za-z][A-Za-z0-9]*$`)

// ValidateColor validates a Graphviz color used for cluster highlighting.
// Accepted forms are hex colors (#RGB, #RRGGBB, #RRGGBBAA) and color names.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if strings.HasPrefix(color, "#") {
		if !hexColorRegex.MatchString(color) {
			return New(ErrCodeInvalidColor, "invalid hex color: %q", color)
		}
		return nil
	}
	if !colorNameRegex.MatchString(color) {
		return New(ErrCodeInvalidColor, "invalid color name: %q", color)
	}
	return nil
}

// ValidateLabel validates a display label substituted into node labels.
//
// Validation rules:
//   - Maximum length of 64 characters
//   - No double quotes or backslashes
//   - No control characters
//
// An empty label is valid and means "no substitution".
func ValidateLabel(label string) error {
	const maxLabelLength = 64
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	if strings.ContainsAny(label, `"\`) {
		return New(ErrCodeInvalidInput, "label cannot contain quotes or backslashes")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid characters")
		}
	}
	return nil
}
