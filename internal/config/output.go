package config

import (
	"fmt"
	"os"
	"strings"
)

// OutputFormat is the encoding of machine-readable command output
type OutputFormat string

const (
	// FormatJSON encodes output as indented JSON (default)
	FormatJSON OutputFormat = "json"
	// FormatYAML encodes output as YAML
	FormatYAML OutputFormat = "yaml"
)

// validOutputFormats is the set of allowed output format values
var validOutputFormats = map[OutputFormat]bool{
	FormatJSON: true,
	FormatYAML: true,
}

// ParseOutputFormat validates a user-supplied format.
func ParseOutputFormat(value string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	if !validOutputFormats[format] {
		return "", fmt.Errorf("invalid output format %q (valid: json, yaml)", value)
	}
	return format, nil
}

// GetOutputFormat retrieves the output format configuration.
// Returns the configured format, or FormatJSON (default) if not set or invalid.
// Logs a warning to stderr if an invalid value is configured.
//
// Config key: output.format
// Valid values: json, yaml
func GetOutputFormat() OutputFormat {
	value := GetString(KeyOutputFormat)
	if value == "" {
		return FormatJSON
	}
	format, err := ParseOutputFormat(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid output.format %q in config (valid: json, yaml), using default 'json'\n", value)
		return FormatJSON
	}
	return format
}
