package record

// Annotation is one highlighted passage extracted from a PDF.
type Annotation struct {
	// Page is the 1-based page number the highlight appears on
	Page int

	// Date is the annotation's modification timestamp, passed through verbatim
	Date string

	// Text is the document text spanned by the highlight (empty if extraction failed)
	Text string

	// Note is the free-text comment attached to the highlight
	Note string
}

// AnnotatedWork combines a bibliography entry with the annotations of its PDF.
// It is the unit record consumed by every renderer.
type AnnotatedWork struct {
	// Fields holds the bibliographic metadata (empty for a bare-file run)
	Fields Fields

	// File is the resolved path of the associated PDF, or empty if none
	File string

	// Annotations are in document order: page ascending, then the order
	// the document reports them within a page
	Annotations []Annotation
}

// Key returns the citation key, or "" if the work has none.
func (w AnnotatedWork) Key() string {
	if w.Fields.Key == nil {
		return ""
	}
	return *w.Fields.Key
}
