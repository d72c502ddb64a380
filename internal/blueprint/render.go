package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format is a serialization format for blueprints.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want json or yaml)", s)
}

// RenderJSON serializes the blueprint as indented JSON.
func RenderJSON(b *Blueprint) ([]byte, error) {
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render blueprint as JSON: %w", err)
	}
	return append(out, '\n'), nil
}

// RenderYAML serializes the blueprint as YAML.
func RenderYAML(b *Blueprint) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("failed to render blueprint as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to render blueprint as YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Render serializes the blueprint in the given format.
func Render(b *Blueprint, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return RenderJSON(b)
	case FormatYAML:
		return RenderYAML(b)
	}
	return nil, fmt.Errorf("unsupported output format %q", f)
}
