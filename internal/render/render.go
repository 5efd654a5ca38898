// Package render turns collected records into text, JSON, YAML, HTML or a
// citation list. Renderers are pure: they do no I/O and read no clock.
package render

import (
	"fmt"
	"strings"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/record"
)

// Renderer formats an ordered record set.
type Renderer interface {
	Render(works []record.AnnotatedWork) (string, error)
}

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
	FormatCite Format = "cite"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatHTML, FormatCite}

// Options carries renderer inputs that are not part of the records.
type Options struct {
	// Title is the HTML page title, e.g. "Notes Mon Jan  2 15:04:05 2006"
	Title string

	// CiteTemplate is the citation command template for FormatCite
	CiteTemplate string
}

// ParseFormat converts a format name into a Format.
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
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want text, json, yaml, html or cite)", s))
}

// New returns the Renderer for format.
func New(format Format, opts Options) (Renderer, error) {
	switch format {
	case FormatText, "":
		return Text{}, nil
	case FormatJSON:
		return JSON{}, nil
	case FormatYAML:
		return YAML{}, nil
	case FormatHTML:
		return NewHTML(opts.Title), nil
	case FormatCite:
		return NewCite(opts.CiteTemplate)
	}
	return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown format %q", format))
}
