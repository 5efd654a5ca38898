package render

import "github.com/hpungsan/pannote/internal/record"

// wireWork is the structured (JSON/YAML) shape of a record. Every
// well-known field is always present; a missing one encodes as null.
type wireWork struct {
	File        string            `json:"file" yaml:"file"`
	Author      *string           `json:"author" yaml:"author"`
	Year        *string           `json:"year" yaml:"year"`
	Title       *string           `json:"title" yaml:"title"`
	Journal     *string           `json:"journal" yaml:"journal"`
	Review      *string           `json:"review" yaml:"review"`
	ID          *string           `json:"ID" yaml:"ID"`
	DOI         *string           `json:"doi" yaml:"doi"`
	FileRef     *string           `json:"file_ref" yaml:"file_ref"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
	Annotations []wireAnnotation  `json:"annotations" yaml:"annotations"`
}

type wireAnnotation struct {
	Page int    `json:"page" yaml:"page"`
	Date string `json:"date" yaml:"date"`
	Text string `json:"text" yaml:"text"`
	Note string `json:"note" yaml:"note"`
}

func toWire(works []record.AnnotatedWork) []wireWork {
	out := make([]wireWork, len(works))
	for i, w := range works {
		f := w.Fields
		ww := wireWork{
			File:        w.File,
			Author:      f.Author,
			Year:        f.Year,
			Title:       f.Title,
			Journal:     f.Journal,
			Review:      f.Review,
			ID:          f.Key,
			DOI:         f.DOI,
			FileRef:     f.FileRef,
			Annotations: make([]wireAnnotation, len(w.Annotations)),
		}
		if len(f.Extra) > 0 {
			ww.Extra = f.Extra
		}
		for j, a := range w.Annotations {
			ww.Annotations[j] = wireAnnotation(a)
		}
		out[i] = ww
	}
	return out
}

func fromWire(in []wireWork) []record.AnnotatedWork {
	out := make([]record.AnnotatedWork, len(in))
	for i, ww := range in {
		w := record.AnnotatedWork{
			File: ww.File,
			Fields: record.Fields{
				Key:     ww.ID,
				Author:  ww.Author,
				Year:    ww.Year,
				Title:   ww.Title,
				Journal: ww.Journal,
				Review:  ww.Review,
				DOI:     ww.DOI,
				FileRef: ww.FileRef,
			},
		}
		if len(ww.Extra) > 0 {
			w.Fields.Extra = ww.Extra
		}
		if len(ww.Annotations) > 0 {
			w.Annotations = make([]record.Annotation, len(ww.Annotations))
			for j, a := range ww.Annotations {
				w.Annotations[j] = record.Annotation(a)
			}
		}
		out[i] = w
	}
	return out
}
