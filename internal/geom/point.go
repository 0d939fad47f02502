// Package geom holds the value types shared by the drawing engine: points,
// axis-aligned rectangles and 2D affine matrices.
package geom

import "math"

// Epsilon is the distance below which two scene positions are considered
// coincident. Connection points use it to decide when to link and unlink.
const Epsilon = 1e-6

// Point is a 2D position or displacement.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Near reports whether p and q are within eps of each other.
func (p Point) Near(q Point, eps float64) bool {
	return p.Dist(q) <= eps
}

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// RoundToGrid snaps v to the nearest multiple of grid. A non-positive grid
// disables snapping.
func RoundToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// RoundPointToGrid snaps both coordinates of p.
func RoundPointToGrid(p Point, grid float64) Point {
	return Point{X: RoundToGrid(p.X, grid), Y: RoundToGrid(p.Y, grid)}
}
