// Package geometry maps normalized highlight quadrilaterals onto page-space rectangles.
package geometry

import "math"

// Point is a 2-D point. Inside a Quad the coordinates are fractions of the
// page width and height, with the origin at the top-left corner of the page.
type Point struct {
	X float64
	Y float64
}

// Quad is one highlighted line segment. Points 0 and 2 are opposite corners.
type Quad [4]Point

// Rect is an axis-aligned rectangle in page units.
// X0/Y0 come from the quad's first point and X1/Y1 from its third, so a Rect
// produced by MapQuad is not necessarily ordered; see Canon.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// MapQuad converts q into page units for a page of the given width and height.
// Only the diagonal formed by points 0 and 2 is used: the resulting rectangle
// is the bounding box of that diagonal, which is a deliberate approximation
// for rotated or skewed quads.
//
// Malformed input (NaN or infinite values, negative dimensions) yields the
// zero Rect so that text resolution degrades to an empty string instead of
// failing the document scan.
func MapQuad(q Quad, width, height float64) Rect {
	if !validDimension(width) || !validDimension(height) {
		return Rect{}
	}
	a, c := q[0], q[2]
	for _, v := range []float64{a.X, a.Y, c.X, c.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Rect{}
		}
	}
	return Rect{
		X0: a.X * width,
		Y0: a.Y * height,
		X1: c.X * width,
		Y1: c.Y * height,
	}
}

func validDimension(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Canon returns r with its corners ordered so that X0 <= X1 and Y0 <= Y1.
func (r Rect) Canon() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Empty reports whether r has zero area.
func (r Rect) Empty() bool {
	return r.X0 == r.X1 || r.Y0 == r.Y1
}

// Contains reports whether the point (x, y) lies inside r, edges included.
// r is canonicalized first.
func (r Rect) Contains(x, y float64) bool {
	c := r.Canon()
	return x >= c.X0 && x <= c.X1 && y >= c.Y0 && y <= c.Y1
}

// Bounds returns the bounding quad of the given points in the order
// top-left, top-right, bottom-right, bottom-left, so that points 0 and 2
// are opposite corners. It returns false if pts is empty.
func Bounds(pts []Point) (Quad, bool) {
	if len(pts) == 0 {
		return Quad{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Quad{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}, true
}
