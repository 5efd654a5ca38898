package render

import (
	"fmt"
	"strings"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/record"
)

// Cite renders one citation command per record by substituting the
// citation key into a template such as `\cite{%s}`.
type Cite struct {
	template string
}

// NewCite validates tmpl: after removing literal "%%", it must contain
// exactly one verb and that verb must be %s.
func NewCite(tmpl string) (*Cite, error) {
	rest := strings.ReplaceAll(tmpl, "%%", "")
	if strings.Count(rest, "%") != 1 || strings.Count(rest, "%s") != 1 {
		return nil, errors.NewInvalidTemplate(tmpl)
	}
	return &Cite{template: tmpl}, nil
}

func (c *Cite) Render(works []record.AnnotatedWork) (string, error) {
	if len(works) == 0 {
		return "", nil
	}
	lines := make([]string, len(works))
	for i, w := range works {
		lines[i] = fmt.Sprintf(c.template, record.Display(w.Fields.Key))
	}
	return strings.Join(lines, "\n") + "\n", nil
}
