// Package document defines the Document Service the extraction pipeline reads
// PDFs through, along with its ledongthuc/pdf implementation.
package document

import "github.com/hpungsan/pannote/internal/geometry"

// KindHighlight is the annotation kind the extractor keeps.
const KindHighlight = "Highlight"

// Service opens documents by path.
type Service interface {
	// Open returns the document at path. A missing, corrupt or unsupported
	// file yields a DOCUMENT_UNAVAILABLE *errors.AnnoteError.
	Open(path string) (Document, error)
}

// Document is an opened PDF. Callers must Close it.
type Document interface {
	PageCount() int
	// Page returns the page at 0-based index i.
	Page(i int) Page
	Close() error
}

// Page is a single page of a Document.
type Page interface {
	// Size returns the page width and height in page units.
	Size() (width, height float64)
	// Annotations returns the page's annotations in the order the document
	// lists them.
	Annotations() []Annot
	// Text returns the text inside r, given in page units with a top-left origin.
	Text(r geometry.Rect) (string, error)
}

// Annot is one annotation as reported by the document.
type Annot struct {
	// Kind is the annotation subtype, e.g. KindHighlight
	Kind string

	// Quads are normalized to [0,1] with a top-left origin, one per
	// highlighted line segment
	Quads []geometry.Quad

	// ModifiedAt is the raw modification date string (PDF /M entry)
	ModifiedAt string

	// Contents is the annotation's free-text comment
	Contents string
}
