// Package extract turns a document's highlight annotations into records.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/pannote/internal/document"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/geometry"
	"github.com/hpungsan/pannote/internal/record"
)

// ResolveText resolves each rectangle on page in order and joins the parts
// with a single space. A rectangle that fails to resolve contributes an
// empty part; empty parts are skipped so they never double the separator.
func ResolveText(page document.Page, rects []geometry.Rect, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	parts := make([]string, 0, len(rects))
	for _, r := range rects {
		txt, err := page.Text(r)
		if err != nil {
			logger.Debug("text extraction failed", "rect", r, "error", err)
			continue
		}
		if txt == "" {
			continue
		}
		parts = append(parts, txt)
	}
	return strings.Join(parts, " ")
}

// Extractor reads highlight annotations through a document.Service.
type Extractor struct {
	Docs   document.Service
	Logger *slog.Logger
}

// New returns an Extractor reading through docs.
func New(docs document.Service, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Docs: docs, Logger: logger}
}

// Extract returns the highlight annotations of the document at path, page by
// page in ascending order and, within a page, in the order the document
// lists them. Non-highlight annotations are skipped. A highlight without
// quads is kept with empty text.
//
// An unopenable document yields a DOCUMENT_UNAVAILABLE error; callers treat
// it as a document without annotations. A context that ends between pages
// yields CANCELLED.
func (e *Extractor) Extract(ctx context.Context, path string) ([]record.Annotation, error) {
	doc, err := e.Docs.Open(path)
	if err != nil {
		if errors.Is(err, errors.ErrDocumentUnavailable) {
			return nil, err
		}
		return nil, errors.NewDocumentUnavailable(path, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.Log().Debug("close document", "path", path, "error", cerr)
		}
	}()

	annotations := []record.Annotation{}
	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("extract " + path)
		}

		page := doc.Page(i)
		width, height := page.Size()
		for _, a := range page.Annotations() {
			if a.Kind != document.KindHighlight {
				continue
			}
			rects := make([]geometry.Rect, len(a.Quads))
			for j, q := range a.Quads {
				rects[j] = geometry.MapQuad(q, width, height)
			}
			annotations = append(annotations, record.Annotation{
				Page: i + 1,
				Date: a.ModifiedAt,
				Text: ResolveText(page, rects, e.Log()),
				Note: a.Contents,
			})
		}
	}
	return annotations, nil
}

// Log returns the extractor's logger, or slog.Default if none is set.
func (e *Extractor) Log() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
