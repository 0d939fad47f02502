package geom

import "math"

// MinDimension replaces a zero width or height when a degenerate rectangle is
// normalized.
const MinDimension = 1e-3

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(p1, p2 Point) Rect {
	return Rect{
		X:      math.Min(p1.X, p2.X),
		Y:      math.Min(p1.Y, p2.Y),
		Width:  math.Abs(p2.X - p1.X),
		Height: math.Abs(p2.Y - p1.Y),
	}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) TopLeft() Point     { return Point{X: r.X, Y: r.Y} }
func (r Rect) BottomRight() Point { return Point{X: r.Right(), Y: r.Bottom()} }

// Contains checks if a point is inside the rect (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Right() <= r.Right() && o.Y >= r.Y && o.Bottom() <= r.Bottom()
}

// Intersects reports whether r and o overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() && r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.Right(), other.Right())
	maxY := max(r.Bottom(), other.Bottom())

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// UnionAll returns the union of rects, or the zero Rect for an empty slice.
func UnionAll(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	result := rects[0]
	for _, r := range rects[1:] {
		result = result.Union(r)
	}
	return result
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translated returns r moved by d.
func (r Rect) Translated(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Normalized flips negative sizes and substitutes MinDimension for a zero
// width or height, keeping the rect centered on the degenerate axis.
func (r Rect) Normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	if r.Width == 0 {
		r.X -= MinDimension / 2
		r.Width = MinDimension
	}
	if r.Height == 0 {
		r.Y -= MinDimension / 2
		r.Height = MinDimension
	}
	return r
}

// Adjusted grows the rect by d on every side (negative d shrinks it).
func (r Rect) Adjusted(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// RotateRect rotates r about the origin by a multiple of 90 degrees, clockwise
// in y-down coordinates. Width and height swap on quarter turns:
//
//	 90: (-(y+h), x, h, w)
//	180: (-(x+w), -(y+h), w, h)
//	270: (y, -(x+w), h, w)
//
// Any other angle returns r unchanged.
func RotateRect(r Rect, angle int) Rect {
	switch normalizeAngle(angle) {
	case 90:
		return Rect{X: -(r.Y + r.Height), Y: r.X, Width: r.Height, Height: r.Width}
	case 180:
		return Rect{X: -(r.X + r.Width), Y: -(r.Y + r.Height), Width: r.Width, Height: r.Height}
	case 270:
		return Rect{X: r.Y, Y: -(r.X + r.Width), Width: r.Height, Height: r.Width}
	default:
		return r
	}
}

func normalizeAngle(angle int) int {
	angle %= 360
	if angle < 0 {
		angle += 360
	}
	return angle
}
