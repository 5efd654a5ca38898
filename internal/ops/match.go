package ops

import (
	"path/filepath"
	"strings"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/record"
)

// ResolveFilePath derives a PDF path from a raw bibliography file reference
// by stripping prefixLen leading and suffixLen trailing characters and
// joining the remainder onto baseDir. An absolute remainder is used as-is.
// It returns false when the reference is empty or too short to leave a path.
func ResolveFilePath(raw, baseDir string, prefixLen, suffixLen int) (string, bool) {
	if prefixLen < 0 || suffixLen < 0 {
		return "", false
	}
	runes := []rune(raw)
	if len(runes) <= prefixLen+suffixLen {
		return "", false
	}
	rest := strings.TrimSpace(string(runes[prefixLen : len(runes)-suffixLen]))
	if rest == "" {
		return "", false
	}
	if filepath.IsAbs(rest) {
		return rest, true
	}
	return filepath.Join(baseDir, rest), true
}

// Included reports whether a bibliography entry becomes a record: it has at
// least one annotation, a non-empty review, or inclusion is forced.
func Included(annotationCount int, review string, force bool) bool {
	return annotationCount > 0 || strings.TrimSpace(review) != "" || force
}

// canonicalEntry returns a copy of entry in which the configured file and
// review fields sit under the names the record model expects. A field that
// already used a canonical name is swapped to the configured name so no
// value is lost.
func canonicalEntry(entry bib.Entry, cfg *config.Config) bib.Entry {
	out := make(bib.Entry, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	swapField(out, cfg.FileField, record.FieldFile)
	swapField(out, cfg.ReviewField, record.FieldReview)
	return out
}

func swapField(entry bib.Entry, from, to string) {
	from = strings.ToLower(from)
	if from == "" || from == to {
		return
	}
	fv, fok := entry[from]
	tv, tok := entry[to]
	delete(entry, from)
	delete(entry, to)
	if fok {
		entry[to] = fv
	}
	if tok {
		entry[from] = tv
	}
}
