package document

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/geometry"
)

// Fallback page size (US Letter) when no usable MediaBox is found.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// maxParentDepth bounds the page-tree walk for inherited MediaBox entries.
const maxParentDepth = 10

// PDFService reads documents with github.com/ledongthuc/pdf.
type PDFService struct {
	Logger *slog.Logger
}

// NewPDFService returns a PDFService logging to logger (slog.Default if nil).
func NewPDFService(logger *slog.Logger) *PDFService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFService{Logger: logger}
}

// Open opens the PDF at path.
func (s *PDFService) Open(path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = errors.NewDocumentUnavailable(path, fmt.Errorf("malformed document: %v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, errors.NewDocumentUnavailable(path, err)
	}
	return &pdfDocument{path: path, file: f, reader: r, logger: s.logger()}, nil
}

func (s *PDFService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

type pdfDocument struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	logger *slog.Logger
}

func (d *pdfDocument) PageCount() (n int) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("cannot count pages", "path", d.path, "panic", r)
			n = 0
		}
	}()
	return d.reader.NumPage()
}

func (d *pdfDocument) Page(i int) Page {
	p := &pdfPage{logger: d.logger, path: d.path, num: i + 1}
	func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Warn("cannot read page", "path", d.path, "page", i+1, "panic", r)
				p.page = pdf.Page{}
			}
		}()
		p.page = d.reader.Page(i + 1)
	}()
	p.box = p.mediaBox()
	return p
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

// box is a page rectangle in PDF user space (bottom-left origin).
type box struct {
	llx, lly, urx, ury float64
}

func (b box) width() float64  { return b.urx - b.llx }
func (b box) height() float64 { return b.ury - b.lly }

// glyph is one shown character with its position in top-left page units.
type glyph struct {
	x, y, w, size float64
	s             string
}

type pdfPage struct {
	logger *slog.Logger
	path   string
	num    int
	page   pdf.Page
	box    box

	glyphs []glyph
	loaded bool
}

func (p *pdfPage) Size() (float64, float64) {
	return p.box.width(), p.box.height()
}

func (p *pdfPage) Annotations() (annots []Annot) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("cannot read annotations", "path", p.path, "page", p.num, "panic", r)
			annots = nil
		}
	}()

	if p.page.V.IsNull() {
		return nil
	}
	list := p.page.V.Key("Annots")
	if list.IsNull() || list.Kind() != pdf.Array {
		return nil
	}

	for i := 0; i < list.Len(); i++ {
		v := list.Index(i)
		if v.IsNull() || v.Kind() != pdf.Dict {
			continue
		}
		subtype := v.Key("Subtype")
		if subtype.IsNull() {
			continue
		}
		a := Annot{Kind: subtype.Name()}
		if m := v.Key("M"); !m.IsNull() {
			a.ModifiedAt = m.Text()
		}
		if c := v.Key("Contents"); !c.IsNull() {
			a.Contents = c.Text()
		}
		if a.Kind == KindHighlight {
			a.Quads = p.quads(v.Key("QuadPoints"))
		}
		annots = append(annots, a)
	}
	return annots
}

// quads converts a QuadPoints array (8 numbers per quad, user space) into
// normalized top-left quads. Viewers disagree on the point order inside a
// quad, so each one is replaced by its bounding box.
func (p *pdfPage) quads(v pdf.Value) []geometry.Quad {
	if v.IsNull() || v.Kind() != pdf.Array {
		return nil
	}
	w, h := p.box.width(), p.box.height()
	if w <= 0 || h <= 0 {
		return nil
	}

	var out []geometry.Quad
	for i := 0; i+8 <= v.Len(); i += 8 {
		pts := make([]geometry.Point, 0, 4)
		for j := 0; j < 8; j += 2 {
			x, okX := number(v.Index(i + j))
			y, okY := number(v.Index(i + j + 1))
			if !okX || !okY {
				continue
			}
			pts = append(pts, geometry.Point{
				X: (x - p.box.llx) / w,
				Y: (p.box.ury - y) / h,
			})
		}
		if q, ok := geometry.Bounds(pts); ok {
			out = append(out, q)
		}
	}
	return out
}

// Text collects the glyphs whose centre falls inside r, in content-stream
// order. A space is inserted on a line change or a horizontal gap wider than
// a quarter of the font size.
func (p *pdfPage) Text(r geometry.Rect) (string, error) {
	if err := p.load(); err != nil {
		return "", err
	}

	var b strings.Builder
	var prev *glyph
	for i := range p.glyphs {
		g := &p.glyphs[i]
		cx := g.x + g.w/2
		cy := g.y - g.size*0.3
		if !r.Contains(cx, cy) {
			continue
		}
		if isBlank(g.s) {
			writeSpace(&b)
			prev = g
			continue
		}
		if prev != nil && breaksWord(*prev, *g) {
			writeSpace(&b)
		}
		b.WriteString(g.s)
		prev = g
	}
	return strings.TrimSpace(b.String()), nil
}

func (p *pdfPage) load() (err error) {
	if p.loaded {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: cannot decode content: %v", p.num, r)
		}
	}()
	if p.page.V.IsNull() {
		return fmt.Errorf("page %d: not found", p.num)
	}

	content := p.page.Content()
	p.glyphs = make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		p.glyphs = append(p.glyphs, glyph{
			x:    t.X - p.box.llx,
			y:    p.box.ury - t.Y,
			w:    t.W,
			size: t.FontSize,
			s:    t.S,
		})
	}
	p.loaded = true
	return nil
}

func breaksWord(prev, g glyph) bool {
	size := math.Max(prev.size, g.size)
	if size <= 0 {
		size = 1
	}
	if math.Abs(g.y-prev.y) > size*0.5 {
		return true
	}
	return g.x-(prev.x+prev.w) > size*0.25
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

func writeSpace(b *strings.Builder) {
	s := b.String()
	if len(s) == 0 || s[len(s)-1] == ' ' {
		return
	}
	b.WriteByte(' ')
}

// mediaBox resolves the page's MediaBox, walking up the page tree for an
// inherited one and falling back to US Letter.
func (p *pdfPage) mediaBox() (b box) {
	fallback := box{urx: defaultPageWidth, ury: defaultPageHeight}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("cannot read MediaBox", "path", p.path, "page", p.num, "panic", r)
			b = fallback
		}
	}()

	if p.page.V.IsNull() {
		return fallback
	}
	current := p.page.V
	for i := 0; i <= maxParentDepth && !current.IsNull(); i++ {
		if mb, ok := parseBox(current.Key("MediaBox")); ok {
			return mb
		}
		current = current.Key("Parent")
	}
	p.logger.Debug("no usable MediaBox, assuming US Letter", "path", p.path, "page", p.num)
	return fallback
}

func parseBox(v pdf.Value) (box, bool) {
	if v.IsNull() || v.Kind() != pdf.Array || v.Len() != 4 {
		return box{}, false
	}
	var c [4]float64
	for i := range c {
		f, ok := number(v.Index(i))
		if !ok {
			return box{}, false
		}
		c[i] = f
	}
	b := box{llx: math.Min(c[0], c[2]), lly: math.Min(c[1], c[3]), urx: math.Max(c[0], c[2]), ury: math.Max(c[1], c[3])}
	if b.width() <= 0 || b.height() <= 0 {
		return box{}, false
	}
	return b, true
}

func number(v pdf.Value) (float64, bool) {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64()), true
	case pdf.Real:
		return v.Float64(), true
	}
	return 0, false
}
