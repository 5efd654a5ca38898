package render

import (
	"fmt"
	"strings"

	"github.com/hpungsan/pannote/internal/record"
)

// Text renders one block per record:
//
//	author, year, journal, key
//	title
//	pN, highlighted text
//	=>  note
type Text struct{}

func (Text) Render(works []record.AnnotatedWork) (string, error) {
	var b strings.Builder
	for _, w := range works {
		f := w.Fields
		fmt.Fprintf(&b, "%s, %s, %s, %s\n%s\n",
			record.Display(f.Author),
			record.Display(f.Year),
			record.Display(f.Journal),
			record.Display(f.Key),
			record.Display(f.Title))
		for _, a := range w.Annotations {
			fmt.Fprintf(&b, "p%d, %s\n", a.Page, a.Text)
			if a.Note != "" {
				fmt.Fprintf(&b, "=>  %s\n", a.Note)
			}
		}
	}
	return b.String(), nil
}
