package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "plain string", input: "Quantum Effects", want: "Quantum Effects"},
		{name: "decomposed string becomes NFC", input: "Se\u0301bastien", want: "S\u00e9bastien"},
		{name: "utf-8 bytes", input: []byte("Gr\xc3\xbcn"), want: "Gr\u00fcn"},
		{name: "latin-1 bytes", input: []byte("Gr\xfcn"), want: "Gr\u00fcn"},
		{name: "int", input: 2020, want: "2020"},
		{name: "float", input: 1.5, want: "1.5"},
		{name: "nil string pointer", input: (*string)(nil), want: ""},
		{name: "string pointer", input: strPtr("x"), want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeText(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeText(%#v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	in := "Se\u0301bastien Gru\u0308n"
	once := NormalizeText(in)
	twice := NormalizeText(once)
	if once != twice {
		t.Errorf("NormalizeText not idempotent: %q then %q", once, twice)
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(nil); got != Placeholder {
		t.Errorf("Display(nil) = %q, want %q", got, Placeholder)
	}
	if got := Display(strPtr("")); got != "" {
		t.Errorf("Display(\"\") = %q, want empty", got)
	}
	if got := Display(strPtr("Smith")); got != "Smith" {
		t.Errorf("Display(Smith) = %q, want %q", got, "Smith")
	}
}

func TestFields_Get(t *testing.T) {
	f := Fields{
		Key:    strPtr("smith2020"),
		Author: strPtr("Smith, J."),
		Extra:  map[string]string{"keywords": "optics", "key": "Smith"},
	}

	tests := []struct {
		name   string
		field  string
		want   string
		wantOK bool
	}{
		{name: "ID addresses key", field: "ID", want: "smith2020", wantOK: true},
		{name: "key field is overflow", field: "key", want: "Smith", wantOK: true},
		{name: "lower-case id is not the citation key", field: "id", wantOK: false},
		{name: "well-known", field: "author", want: "Smith, J.", wantOK: true},
		{name: "well-known case-insensitive", field: "Author", want: "Smith, J.", wantOK: true},
		{name: "missing well-known", field: "year", wantOK: false},
		{name: "overflow", field: "keywords", want: "optics", wantOK: true},
		{name: "overflow upper-case lookup", field: "KEYWORDS", want: "optics", wantOK: true},
		{name: "missing overflow", field: "publisher", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Get(tt.field)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Get(%q) = (%q, %v), want (%q, %v)", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if got := f.Display("journal"); got != Placeholder {
		t.Errorf("Display(journal) = %q, want %q", got, Placeholder)
	}
}

func TestFields_IsEmpty(t *testing.T) {
	if !(Fields{}).IsEmpty() {
		t.Error("zero Fields should be empty")
	}
	if (Fields{Year: strPtr("")}).IsEmpty() {
		t.Error("Fields with present empty year should not be empty")
	}
	if (Fields{Extra: map[string]string{"note": "x"}}).IsEmpty() {
		t.Error("Fields with overflow should not be empty")
	}
}

func TestAssemble(t *testing.T) {
	entry := map[string]string{
		"ID":       "smith2020",
		"author":   "Smith, J.",
		"year":     "2020",
		"title":    "Quantum Effects",
		"file":     ":smith2020.pdf:PDF",
		"keywords": "optics",
	}
	annots := []Annotation{
		{Page: 3, Date: "D:20200101", Text: "quantum effects", Note: "key result"},
	}

	got := Assemble(entry, "/pdfs/smith2020.pdf", annots)

	want := AnnotatedWork{
		Fields: Fields{
			Key:     strPtr("smith2020"),
			Author:  strPtr("Smith, J."),
			Year:    strPtr("2020"),
			Title:   strPtr("Quantum Effects"),
			FileRef: strPtr(":smith2020.pdf:PDF"),
			Extra:   map[string]string{"keywords": "optics"},
		},
		File:        "/pdfs/smith2020.pdf",
		Annotations: annots,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
	if got.Fields.Journal != nil {
		t.Error("missing journal should stay nil, not empty string")
	}
}

func TestAssemble_KeyFieldKeepsCitationKey(t *testing.T) {
	entry := map[string]string{
		"ID":  "smith2020",
		"key": "Smith",
		"id":  "local-17",
	}

	// Map iteration order varies between runs, so repeat to catch any
	// field that competes with ID for the citation key slot.
	for i := 0; i < 50; i++ {
		got := Assemble(entry, "", nil)
		if got.Key() != "smith2020" {
			t.Fatalf("Key() = %q, want %q", got.Key(), "smith2020")
		}
		want := map[string]string{"key": "Smith", "id": "local-17"}
		if diff := cmp.Diff(want, got.Fields.Extra); diff != "" {
			t.Fatalf("Extra mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestAssemble_ByteValues(t *testing.T) {
	entry := map[string][]byte{
		"ID":     []byte("muller1999"),
		"author": []byte("M\xfcller"),
	}
	got := Assemble(entry, "", nil)

	if v, _ := got.Fields.Get("author"); v != "M\u00fcller" {
		t.Errorf("author = %q, want %q", v, "M\u00fcller")
	}
	if got.Annotations != nil {
		t.Errorf("Annotations = %v, want nil", got.Annotations)
	}
}

func TestAssemble_LooseFile(t *testing.T) {
	var entry map[string]string
	got := Assemble(entry, "paper.pdf", []Annotation{{Page: 1}})

	if !got.Fields.IsEmpty() {
		t.Errorf("Fields = %+v, want empty", got.Fields)
	}
	if got.File != "paper.pdf" {
		t.Errorf("File = %q, want %q", got.File, "paper.pdf")
	}
}

func TestSortByKey(t *testing.T) {
	mk := func(key *string, file string) AnnotatedWork {
		return AnnotatedWork{Fields: Fields{Key: key}, File: file}
	}

	orders := [][]AnnotatedWork{
		{mk(strPtr("b"), "b"), mk(strPtr("a"), "a"), mk(nil, "none"), mk(strPtr("c"), "c")},
		{mk(strPtr("c"), "c"), mk(nil, "none"), mk(strPtr("a"), "a"), mk(strPtr("b"), "b")},
	}

	want := []string{"none", "a", "b", "c"}
	for i, works := range orders {
		SortByKey(works)
		var got []string
		for _, w := range works {
			got = append(got, w.File)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSortByKey_Stable(t *testing.T) {
	works := []AnnotatedWork{
		{Fields: Fields{Key: strPtr("dup")}, File: "first"},
		{Fields: Fields{Key: strPtr("dup")}, File: "second"},
	}
	SortByKey(works)
	if works[0].File != "first" || works[1].File != "second" {
		t.Errorf("equal keys reordered: %q, %q", works[0].File, works[1].File)
	}
}
