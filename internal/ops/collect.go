package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/pannote/internal/bib"
	"github.com/hpungsan/pannote/internal/config"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/extract"
	"github.com/hpungsan/pannote/internal/record"
)

// CollectInput contains parameters for the Collect operation.
type CollectInput struct {
	BibPath string  // required
	PDFDir  string  // directory file references are resolved against
	Filters Filters // conjunctive; empty matches every entry

	// IncludeAll keeps matching entries that have neither annotations nor
	// a review.
	IncludeAll bool
}

// CollectOutput contains the result of the Collect operation.
type CollectOutput struct {
	Works []record.AnnotatedWork `json:"works"`

	// Entries is the number of bibliography entries read
	Entries int `json:"entries"`

	// Matched is the number of entries that passed the filters
	Matched int `json:"matched"`

	// Scanned is the number of documents opened
	Scanned int `json:"scanned"`

	// Unavailable lists resolved paths whose document could not be opened
	Unavailable []string `json:"unavailable,omitempty"`
}

// Collect runs the bibliography pipeline: parse the bibliography, filter
// entries, extract annotations from each matching entry's PDF and assemble
// the included entries into records sorted by citation key.
//
// Filters are evaluated before any document is opened. An entry without a
// usable file reference is never scanned. A document that cannot be opened
// counts as having no annotations.
func Collect(ctx context.Context, ex *extract.Extractor, parser bib.Parser, cfg *config.Config, input CollectInput) (*CollectOutput, error) {
	if strings.TrimSpace(input.BibPath) == "" {
		return nil, errors.NewInvalidRequest("bibliography path is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	entries, err := bib.ParseFile(parser, input.BibPath)
	if err != nil {
		return nil, err
	}

	out := &CollectOutput{Works: []record.AnnotatedWork{}, Entries: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("collect")
		}
		if !input.Filters.Match(entry) {
			continue
		}
		out.Matched++

		review, _ := lookup(entry, cfg.ReviewField)
		rawFile, _ := lookup(entry, cfg.FileField)

		var path string
		var annotations []record.Annotation
		if p, ok := ResolveFilePath(rawFile, input.PDFDir, cfg.PrefixLen(), cfg.SuffixLen()); ok {
			path = p
			ex.Log().Debug("scanning", "key", entry[bib.KeyID], "path", path)
			out.Scanned++
			annotations, err = ex.Extract(ctx, path)
			switch {
			case errors.Is(err, errors.ErrCancelled):
				return nil, err
			case err != nil:
				ex.Log().Warn("document unavailable", "key", entry[bib.KeyID], "path", path, "error", err)
				out.Unavailable = append(out.Unavailable, path)
				annotations = nil
			}
		}

		if !Included(len(annotations), review, input.IncludeAll) {
			continue
		}
		out.Works = append(out.Works, record.Assemble(canonicalEntry(entry, cfg), path, annotations))
	}

	record.SortByKey(out.Works)
	return out, nil
}
