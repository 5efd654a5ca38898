package record

import (
	"cmp"
	"slices"
)

// Assemble builds an AnnotatedWork from a bibliography entry, the resolved
// file path and the annotations extracted from that file. Every textual value
// is passed through NormalizeText.
//
// A nil or empty entry yields empty Fields, which is what a bare-file run
// produces.
func Assemble[M ~map[string]V, V any](entry M, file string, annotations []Annotation) AnnotatedWork {
	var w AnnotatedWork
	for name, raw := range entry {
		w.Fields.set(name, NormalizeText(raw))
	}
	w.File = NormalizeText(file)

	if len(annotations) > 0 {
		w.Annotations = make([]Annotation, len(annotations))
		for i, a := range annotations {
			w.Annotations[i] = Annotation{
				Page: a.Page,
				Date: NormalizeText(a.Date),
				Text: NormalizeText(a.Text),
				Note: NormalizeText(a.Note),
			}
		}
	}
	return w
}

// SortByKey orders works by citation key, ascending. A missing key sorts as
// the empty string. The sort is stable so equal keys keep collection order.
func SortByKey(works []AnnotatedWork) {
	slices.SortStableFunc(works, func(a, b AnnotatedWork) int {
		return cmp.Compare(a.Key(), b.Key())
	})
}
