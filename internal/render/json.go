package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/pannote/internal/record"
)

// JSON renders the records as an indented JSON array.
type JSON struct{}

func (JSON) Render(works []record.AnnotatedWork) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(toWire(works)); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return buf.String(), nil
}

// ParseJSON reads a record set written by the JSON renderer.
func ParseJSON(r io.Reader) ([]record.AnnotatedWork, error) {
	var in []wireWork
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return fromWire(in), nil
}
