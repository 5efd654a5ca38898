package ops

import (
	"context"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/extract"
	"github.com/hpungsan/pannote/internal/record"
)

// LooseInput contains parameters for the Loose operation.
type LooseInput struct {
	// Paths are PDF paths or glob patterns (doublestar syntax)
	Paths []string
}

// LooseOutput contains the result of the Loose operation.
type LooseOutput struct {
	Works       []record.AnnotatedWork `json:"works"`
	Unavailable []string               `json:"unavailable,omitempty"`
}

// Loose extracts annotations from bare PDF files without a bibliography.
// Each file yields one record with empty bibliographic fields, in input
// order; an unopenable file yields a record with no annotations.
func Loose(ctx context.Context, ex *extract.Extractor, input LooseInput) (*LooseOutput, error) {
	paths, err := ExpandInputs(input.Paths)
	if err != nil {
		return nil, err
	}

	out := &LooseOutput{Works: make([]record.AnnotatedWork, 0, len(paths))}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("loose")
		}
		ex.Log().Debug("scanning", "path", path)
		annotations, err := ex.Extract(ctx, path)
		switch {
		case errors.Is(err, errors.ErrCancelled):
			return nil, err
		case err != nil:
			ex.Log().Warn("document unavailable", "path", path, "error", err)
			out.Unavailable = append(out.Unavailable, path)
			annotations = nil
		}
		out.Works = append(out.Works, record.Assemble(map[string]string(nil), path, annotations))
	}
	return out, nil
}
