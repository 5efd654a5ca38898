package ops

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hpungsan/pannote/internal/errors"
)

// ExpandInputs expands glob patterns (including "**") into file paths.
// Plain paths pass through untouched, even if they do not exist, so that
// the extractor reports them as unavailable. Matches of one pattern are
// sorted; patterns keep their order and duplicates are dropped.
func ExpandInputs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.NewInvalidRequest("at least one PDF path is required")
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			add(pattern)
			continue
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid glob pattern: %q", pattern))
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid glob pattern %q: %v", pattern, err))
		}
		if len(matches) == 0 {
			return nil, errors.NewFileNotFound(pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func hasMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
