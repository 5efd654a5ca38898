// Package bib parses BibTeX bibliographies into flat entries.
package bib

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/hpungsan/pannote/internal/errors"
)

// Reserved entry keys, following the bibtexparser convention.
const (
	KeyID   = "ID"
	KeyType = "ENTRYTYPE"
)

// Entry maps lower-cased field names to values. The citation key is stored
// under KeyID and the entry type under KeyType.
type Entry map[string]string

// Parser reads a bibliography into entries, in file order.
type Parser interface {
	Parse(r io.Reader) ([]Entry, error)
}

// BibTeX is a Parser backed by github.com/nickng/bibtex.
type BibTeX struct{}

// Parse implements Parser.
func (BibTeX) Parse(r io.Reader) (entries []Entry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			entries = nil
			err = fmt.Errorf("parse bibtex: %v", rec)
		}
	}()

	db, err := bibtex.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bibtex: %w", err)
	}

	entries = make([]Entry, 0, len(db.Entries))
	for _, e := range db.Entries {
		entry := Entry{
			KeyID:   e.CiteName,
			KeyType: strings.ToLower(e.Type),
		}
		for name, value := range e.Fields {
			if value == nil {
				continue
			}
			entry[strings.ToLower(name)] = unbrace(value.String())
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseFile opens and parses the bibliography at path. Any failure is
// reported as BIBLIOGRAPHY_UNREADABLE.
func ParseFile(p Parser, path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewBibliographyUnreadable(path, err)
	}
	defer f.Close()

	entries, err := p.Parse(f)
	if err != nil {
		return nil, errors.NewBibliographyUnreadable(path, err)
	}
	return entries, nil
}

// unbrace strips one pair of delimiting braces or quotes, if present.
func unbrace(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '{' && s[len(s)-1] == '}' && balanced(s[1:len(s)-1])) ||
			(s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// balanced reports whether braces in s pair up, so that "{A} and {B}" is
// not mistaken for a single braced value.
func balanced(s string) bool {
	depth := 0
	for _, c := range s {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
