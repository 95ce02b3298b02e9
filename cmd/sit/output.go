package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sitproject/sit/internal/config"
)

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeData writes v in the given machine-readable format.
func writeData(w io.Writer, format config.OutputFormat, v interface{}) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatJSON, "":
		return writeJSON(w, v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
