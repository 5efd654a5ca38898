package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/pannote/internal/document"
	"github.com/hpungsan/pannote/internal/document/documenttest"
	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/geometry"
	"github.com/hpungsan/pannote/internal/record"
)

var (
	quadA = geometry.Quad{{X: 0.1, Y: 0.1}, {X: 0.5, Y: 0.1}, {X: 0.5, Y: 0.2}, {X: 0.1, Y: 0.2}}
	quadB = geometry.Quad{{X: 0.1, Y: 0.3}, {X: 0.5, Y: 0.3}, {X: 0.5, Y: 0.4}, {X: 0.1, Y: 0.4}}
)

func rectOf(q geometry.Quad) geometry.Rect {
	return geometry.MapQuad(q, 100, 100)
}

func TestResolveText(t *testing.T) {
	page := &documenttest.Page{
		Width: 100, Height: 100,
		Texts: map[geometry.Rect]string{
			rectOf(quadA): "quantum",
			rectOf(quadB): "effects",
		},
	}

	tests := []struct {
		name  string
		rects []geometry.Rect
		errs  map[geometry.Rect]error
		want  string
	}{
		{name: "two lines", rects: []geometry.Rect{rectOf(quadA), rectOf(quadB)}, want: "quantum effects"},
		{name: "no rects", rects: nil, want: ""},
		{name: "unknown rect resolves empty", rects: []geometry.Rect{rectOf(quadA), {X0: 1, Y0: 1, X1: 2, Y1: 2}, rectOf(quadB)}, want: "quantum effects"},
		{
			name:  "failing rect does not abort",
			rects: []geometry.Rect{rectOf(quadA), rectOf(quadB)},
			errs:  map[geometry.Rect]error{rectOf(quadA): fmt.Errorf("boom")},
			want:  "effects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page.Errs = tt.errs
			got := ResolveText(page, tt.rects, nil)
			if got != tt.want {
				t.Errorf("ResolveText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	page1 := &documenttest.Page{
		Width: 100, Height: 100,
		Annots: []document.Annot{
			documenttest.Highlight("D:20200101", "key result", quadA, quadB),
			{Kind: "Text", Contents: "sticky note"},
		},
		Texts: map[geometry.Rect]string{rectOf(quadA): "quantum", rectOf(quadB): "effects"},
	}
	page2 := &documenttest.Page{Width: 100, Height: 100}
	page3 := &documenttest.Page{
		Width: 100, Height: 100,
		Annots: []document.Annot{
			documenttest.Highlight("D:20200202", "", quadA),
			documenttest.Highlight("D:20200303", "no quads"),
		},
		Texts: map[geometry.Rect]string{rectOf(quadA): "second"},
	}
	doc := &documenttest.Document{Pages: []*documenttest.Page{page1, page2, page3}}
	svc := documenttest.New(map[string]*documenttest.Document{"a.pdf": doc})

	got, err := New(svc, nil).Extract(context.Background(), "a.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []record.Annotation{
		{Page: 1, Date: "D:20200101", Text: "quantum effects", Note: "key result"},
		{Page: 3, Date: "D:20200202", Text: "second", Note: ""},
		{Page: 3, Date: "D:20200303", Text: "", Note: "no quads"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	if !doc.Closed {
		t.Error("document was not closed")
	}
}

func TestExtractor_ZeroPages(t *testing.T) {
	doc := &documenttest.Document{}
	svc := documenttest.New(map[string]*documenttest.Document{"empty.pdf": doc})

	got, err := New(svc, nil).Extract(context.Background(), "empty.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Extract() = %#v, want empty non-nil slice", got)
	}
	if !doc.Closed {
		t.Error("document was not closed")
	}
}

func TestExtractor_Unavailable(t *testing.T) {
	svc := documenttest.New(nil)

	_, err := New(svc, nil).Extract(context.Background(), "missing.pdf")
	if !errors.Is(err, errors.ErrDocumentUnavailable) {
		t.Fatalf("Extract() error = %v, want DOCUMENT_UNAVAILABLE", err)
	}
}

func TestExtractor_Cancelled(t *testing.T) {
	doc := &documenttest.Document{Pages: []*documenttest.Page{{Width: 100, Height: 100}}}
	svc := documenttest.New(map[string]*documenttest.Document{"a.pdf": doc})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(svc, nil).Extract(ctx, "a.pdf")
	if !errors.Is(err, errors.ErrCancelled) {
		t.Fatalf("Extract() error = %v, want CANCELLED", err)
	}
	if !doc.Closed {
		t.Error("document was not closed on cancellation")
	}
}
