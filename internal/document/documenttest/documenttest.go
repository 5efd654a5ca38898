// Package documenttest provides a scripted in-memory document.Service for tests.
package documenttest

import (
	"fmt"
	"sync"

	"github.com/hpungsan/pannote/internal/document"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/geometry"
)

// Service serves Documents from a path-keyed map and records every Open call.
// Paths not in Docs are reported as unavailable.
type Service struct {
	Docs map[string]*Document

	mu     sync.Mutex
	opened []string
}

// New returns a Service serving docs.
func New(docs map[string]*Document) *Service {
	if docs == nil {
		docs = make(map[string]*Document)
	}
	return &Service{Docs: docs}
}

// Open implements document.Service.
func (s *Service) Open(path string) (document.Document, error) {
	s.mu.Lock()
	s.opened = append(s.opened, path)
	s.mu.Unlock()

	d, ok := s.Docs[path]
	if !ok {
		return nil, errors.NewDocumentUnavailable(path, fmt.Errorf("no such document"))
	}
	d.Closed = false
	return d, nil
}

// Opened returns the paths passed to Open, in call order.
func (s *Service) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// Document is a scripted document.Document.
type Document struct {
	Pages  []*Page
	Closed bool
}

func (d *Document) PageCount() int { return len(d.Pages) }

func (d *Document) Page(i int) document.Page { return d.Pages[i] }

func (d *Document) Close() error {
	d.Closed = true
	return nil
}

// Page is a scripted document.Page. Text looks rectangles up in Texts; a
// rectangle listed in Errs fails, and any other rectangle resolves to "".
type Page struct {
	Width, Height float64
	Annots        []document.Annot
	Texts         map[geometry.Rect]string
	Errs          map[geometry.Rect]error

	// TextCalls records every rectangle passed to Text.
	TextCalls []geometry.Rect
}

func (p *Page) Size() (float64, float64) { return p.Width, p.Height }

func (p *Page) Annotations() []document.Annot { return p.Annots }

func (p *Page) Text(r geometry.Rect) (string, error) {
	p.TextCalls = append(p.TextCalls, r)
	if err, ok := p.Errs[r]; ok {
		return "", err
	}
	return p.Texts[r], nil
}

// Highlight builds a highlight annotation.
func Highlight(date, contents string, quads ...geometry.Quad) document.Annot {
	return document.Annot{
		Kind:       document.KindHighlight,
		Quads:      quads,
		ModifiedAt: date,
		Contents:   contents,
	}
}
