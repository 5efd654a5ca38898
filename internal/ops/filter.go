package ops

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/errors"
)

// Filter requires a bibliography field to exist and to contain a match for
// Pattern. Matching is a regexp search, not a full-string match.
type Filter struct {
	Key     string
	Pattern *regexp.Regexp
}

// NewFilter compiles pattern into a Filter on key.
func NewFilter(key, pattern string) (Filter, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Filter{}, errors.NewInvalidFilter(key+"="+pattern, "field key is empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Filter{}, errors.NewInvalidFilter(key+"="+pattern, err.Error())
	}
	return Filter{Key: key, Pattern: re}, nil
}

// ParseFilter parses a "KEY=PATTERN" argument. Only the first '=' separates
// the key, so patterns may contain '='.
func ParseFilter(arg string) (Filter, error) {
	key, pattern, ok := strings.Cut(arg, "=")
	if !ok {
		return Filter{}, errors.NewInvalidFilter(arg, "expected KEY=PATTERN")
	}
	return NewFilter(key, pattern)
}

// String returns the filter in KEY=PATTERN form.
func (f Filter) String() string {
	return fmt.Sprintf("%s=%s", f.Key, f.Pattern)
}

// Match reports whether entry satisfies the filter. An absent field is a
// non-match, never an error.
func (f Filter) Match(entry bib.Entry) bool {
	v, ok := lookup(entry, f.Key)
	return ok && f.Pattern.MatchString(v)
}

// Filters is a conjunctive set of Filter.
type Filters []Filter

// ParseFilters parses every KEY=PATTERN argument, failing on the first bad one.
func ParseFilters(args []string) (Filters, error) {
	fs := make(Filters, 0, len(args))
	for _, a := range args {
		f, err := ParseFilter(a)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// Match reports whether entry satisfies every filter, stopping at the first
// failure. An empty set matches everything.
func (fs Filters) Match(entry bib.Entry) bool {
	for _, f := range fs {
		if !f.Match(entry) {
			return false
		}
	}
	return true
}

// lookup finds key in entry, falling back to its lower-cased form since the
// parser lower-cases field names.
func lookup(entry bib.Entry, key string) (string, bool) {
	if v, ok := entry[key]; ok {
		return v, true
	}
	v, ok := entry[strings.ToLower(key)]
	return v, ok
}
