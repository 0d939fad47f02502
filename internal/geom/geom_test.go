package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints(Pt(10, 40), Pt(-5, 20))
	assert.Equal(t, Rect{X: -5, Y: 20, Width: 15, Height: 20}, r)
}

func TestRotateRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 20}

	tests := []struct {
		angle int
		want  Rect
	}{
		{0, Rect{X: 0, Y: 0, Width: 10, Height: 20}},
		{90, Rect{X: -20, Y: 0, Width: 20, Height: 10}},
		{180, Rect{X: -10, Y: -20, Width: 10, Height: 20}},
		{270, Rect{X: 0, Y: -10, Width: 20, Height: 10}},
		{-90, Rect{X: 0, Y: -10, Width: 20, Height: 10}},
		{45, Rect{X: 0, Y: 0, Width: 10, Height: 20}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RotateRect(r, tt.angle), "angle %d", tt.angle)
	}
}

func TestRotateRectMatchesQuarterTurn(t *testing.T) {
	r := Rect{X: 3, Y: -4, Width: 7, Height: 2}
	for _, angle := range []int{90, 180, 270} {
		assert.Equal(t, QuarterTurn(angle).TransformRect(r), RotateRect(r, angle), "angle %d", angle)
	}
}

func TestNormalizedDegenerate(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: -4, Height: 0}.Normalized()
	assert.Equal(t, 6.0, r.X)
	assert.Equal(t, 4.0, r.Width)
	assert.Equal(t, MinDimension, r.Height)
	assert.InDelta(t, 10, r.Center().Y, 1e-12)
}

func TestRectPredicates(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	assert.True(t, outer.ContainsRect(Rect{X: 10, Y: 10, Width: 20, Height: 20}))
	assert.False(t, outer.ContainsRect(Rect{X: 90, Y: 90, Width: 20, Height: 20}))
	assert.True(t, outer.Intersects(Rect{X: 90, Y: 90, Width: 20, Height: 20}))
	assert.False(t, outer.Intersects(Rect{X: 101, Y: 0, Width: 5, Height: 5}))
	assert.True(t, outer.Contains(Pt(100, 0)))
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, -3).Multiply(QuarterTurn(90)).Multiply(MirrorX())
	p := Pt(12, 7)
	back := m.Invert().Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-12)
	assert.InDelta(t, p.Y, back.Y, 1e-12)
	assert.True(t, m.Multiply(m.Invert()).IsIdentity())
}

func TestRoundToGrid(t *testing.T) {
	assert.Equal(t, 20.0, RoundToGrid(17, 10))
	assert.Equal(t, -10.0, RoundToGrid(-12, 10))
	assert.Equal(t, 17.3, RoundToGrid(17.3, 0))
	assert.Equal(t, Pt(5, 10), RoundPointToGrid(Pt(4, 11), 5))
}
