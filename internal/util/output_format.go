package util

import (
	"fmt"
	"strings"
)

// OutputFormats lists the supported output formats in display order
var OutputFormats = []string{"json", "yaml", "text"}

// NormalizeFormat lowercases and trims the format string
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// ValidateOutputFormat checks if the given format is supported
func ValidateOutputFormat(format string) error {
	normalized := NormalizeFormat(format)
	for _, f := range OutputFormats {
		if f == normalized {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, valid formats: %s", format, strings.Join(OutputFormats, ", "))
}
