package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/pannote/internal/record"
)

// YAML renders the records as a YAML sequence with the same keys as JSON.
type YAML struct{}

func (YAML) Render(works []record.AnnotatedWork) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toWire(works)); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}

// ParseYAML reads a record set written by the YAML renderer.
func ParseYAML(data []byte) ([]record.AnnotatedWork, error) {
	var in []wireWork
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return fromWire(in), nil
}
