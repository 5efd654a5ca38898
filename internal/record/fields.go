package record

import (
	"maps"
	"slices"
	"strings"
)

// Well-known field names as they appear in a parsed bibliography entry.
const (
	FieldKey     = "ID"
	FieldAuthor  = "author"
	FieldYear    = "year"
	FieldTitle   = "title"
	FieldJournal = "journal"
	FieldReview  = "review"
	FieldDOI     = "doi"
	FieldFile    = "file"
)

// Fields holds bibliographic metadata. Well-known fields are typed; any other
// field goes to Extra. A nil pointer means the field is absent, which is
// distinct from a present-but-empty value.
type Fields struct {
	// Key is the citation key (BibTeX ID)
	Key *string

	Author  *string
	Year    *string
	Title   *string
	Journal *string

	// Review is the reader's manual note on the whole work
	Review *string

	DOI *string

	// FileRef is the raw file reference as written in the bibliography
	FileRef *string

	// Extra holds every field without a dedicated slot
	Extra map[string]string
}

// Get returns the value of the named field and whether it is present.
// The citation key is addressed only by FieldKey, exactly as written; a
// bibliography field called "key" or "id" is an ordinary overflow field.
// Other well-known names are matched case-insensitively. Remaining names are
// looked up in Extra, first as given and then lower-cased.
func (f Fields) Get(name string) (string, bool) {
	if p := f.slot(name); p != nil {
		if *p == nil {
			return "", false
		}
		return **p, true
	}
	if v, ok := f.Extra[name]; ok {
		return v, true
	}
	v, ok := f.Extra[strings.ToLower(name)]
	return v, ok
}

// IsEmpty reports whether no field at all is present.
func (f Fields) IsEmpty() bool {
	for _, p := range f.slots() {
		if *p != nil {
			return false
		}
	}
	return len(f.Extra) == 0
}

// ExtraNames returns the names of the overflow fields in sorted order.
func (f Fields) ExtraNames() []string {
	return slices.Sorted(maps.Keys(f.Extra))
}

// set stores value under name, in its typed slot if it has one.
func (f *Fields) set(name, value string) {
	if p := f.slot(name); p != nil {
		*p = &value
		return
	}
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[name] = value
}

func (f *Fields) slot(name string) **string {
	if name == FieldKey {
		return &f.Key
	}
	switch strings.ToLower(name) {
	case FieldAuthor:
		return &f.Author
	case FieldYear:
		return &f.Year
	case FieldTitle:
		return &f.Title
	case FieldJournal:
		return &f.Journal
	case FieldReview:
		return &f.Review
	case FieldDOI:
		return &f.DOI
	case FieldFile:
		return &f.FileRef
	}
	return nil
}

func (f *Fields) slots() []**string {
	return []**string{&f.Key, &f.Author, &f.Year, &f.Title, &f.Journal, &f.Review, &f.DOI, &f.FileRef}
}
