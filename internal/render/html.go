package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/pannote/internal/record"
)

//go:embed templates/notes.html.tmpl
var templateFS embed.FS

var notesTemplate = template.Must(
	template.New("notes.html.tmpl").Funcs(template.FuncMap{
		"markdown": renderMarkdown,
		"display":  record.Display,
		"deref":    deref,
		"fileLink": fileLink,
		"pageLink": pageLink,
		"doiLink":  doiLink,
	}).ParseFS(templateFS, "templates/notes.html.tmpl"),
)

// HTML renders a standalone notes page.
type HTML struct {
	Title string
}

// NewHTML returns an HTML renderer. The title is supplied by the caller so
// rendering stays independent of the clock.
func NewHTML(title string) *HTML {
	if strings.TrimSpace(title) == "" {
		title = "Notes"
	}
	return &HTML{Title: title}
}

type htmlPage struct {
	Title string
	Works []record.AnnotatedWork
}

func (h *HTML) Render(works []record.AnnotatedWork) (string, error) {
	var buf bytes.Buffer
	if err := notesTemplate.Execute(&buf, htmlPage{Title: h.Title, Works: works}); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// renderMarkdown converts note text to HTML using goldmark. Raw HTML in the
// source is not passed through.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// fileLink turns a local path into a link target. Absolute paths, including
// Windows drive paths on any host, become file:// URLs; relative paths stay
// relative. The result is built by net/url, so it is marked safe for href.
func fileLink(file string) template.URL {
	if file == "" {
		return ""
	}
	u := url.URL{Path: filepath.ToSlash(file)}
	switch {
	case isDrivePath(file):
		u.Scheme = "file"
		u.Path = "/" + strings.ReplaceAll(file, `\`, "/")
	case filepath.IsAbs(file) || strings.HasPrefix(file, "/"):
		u.Scheme = "file"
	}
	return template.URL(u.String())
}

// isDrivePath reports whether p starts with a drive letter, as in C:\x or C:/x.
func isDrivePath(p string) bool {
	if len(p) < 3 || p[1] != ':' || (p[2] != '\\' && p[2] != '/') {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func pageLink(file string, page int) template.URL {
	return fileLink(file) + template.URL(fmt.Sprintf("#page=%d", page))
}

// deref returns *s, or "" when s is nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func doiLink(doi string) string {
	return "https://dx.doi.org/" + doi
}
