package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/huanfeng/apkinspect/pkg/models"
)

// Format selects how an analysis is printed
type Format string

const (
	FormatText    Format = "text"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists the accepted values of --format
var Formats = []Format{FormatText, FormatCompact, FormatJSON, FormatYAML}

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (use text, compact, json or yaml)", s)
}

// Write prints the analysis in the requested format
func (r *Renderer) Write(w io.Writer, a *models.Analysis, format Format) error {
	switch format {
	case FormatCompact:
		return r.WriteCompact(w, a)
	case FormatJSON:
		return EncodeJSON(w, a)
	case FormatYAML:
		return EncodeYAML(w, a)
	default:
		return r.WriteFull(w, a)
	}
}

// EncodeJSON writes v as indented JSON
func EncodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// EncodeYAML writes v as YAML
func EncodeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
