package render

import "github.com/inamate/diagrammer/backend-go/internal/geom"

// RectPath generates path commands for a rectangle.
func RectPath(r geom.Rect) []PathCommand {
	return []PathCommand{
		{"M", r.Left(), r.Top()},
		{"L", r.Right(), r.Top()},
		{"L", r.Right(), r.Bottom()},
		{"L", r.Left(), r.Bottom()},
		{"Z"},
	}
}

// EllipsePath generates path commands for the ellipse inscribed in r using
// bezier curves.
func EllipsePath(r geom.Rect) []PathCommand {
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2

	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []PathCommand{
		{"M", c.X + rx, c.Y},
		{"C", c.X + rx, c.Y + ky, c.X + kx, c.Y + ry, c.X, c.Y + ry},
		{"C", c.X - kx, c.Y + ry, c.X - rx, c.Y + ky, c.X - rx, c.Y},
		{"C", c.X - rx, c.Y - ky, c.X - kx, c.Y - ry, c.X, c.Y - ry},
		{"C", c.X + kx, c.Y - ry, c.X + rx, c.Y - ky, c.X + rx, c.Y},
		{"Z"},
	}
}

// PolylinePath generates path commands through points, optionally closed.
func PolylinePath(points []geom.Point, closed bool) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(points)+1)
	path = append(path, PathCommand{"M", points[0].X, points[0].Y})
	for _, p := range points[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	if closed {
		path = append(path, PathCommand{"Z"})
	}
	return path
}
