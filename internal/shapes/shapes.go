// Package shapes is the built-in item catalog: lines, rectangles, ellipses,
// polylines, text and groups.
package shapes

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
	"github.com/inamate/diagrammer/backend-go/internal/textmetrics"
)

const (
	KeyLine     = "line"
	KeyRect     = "rect"
	KeyEllipse  = "ellipse"
	KeyPolyline = "polyline"
	KeyText     = "text"
	KeyGroup    = "group"
)

// Style property keys.
const (
	PropStroke      = "stroke"
	PropFill        = "fill"
	PropStrokeWidth = "strokeWidth"
)

// hitTolerance is the half width of the hit outline around thin strokes.
const hitTolerance = 3.0

// Register adds every built-in kind to f.
func Register(f *item.Factory, m textmetrics.Measurer) {
	f.Register(KeyLine, func() *item.Item { return NewLine(geom.Pt(0, 0), geom.Pt(100, 0)) })
	f.Register(KeyRect, func() *item.Item { return NewRect(geom.Rect{Width: 100, Height: 60}) })
	f.Register(KeyEllipse, func() *item.Item { return NewEllipse(geom.Rect{Width: 100, Height: 60}) })
	f.Register(KeyPolyline, func() *item.Item {
		return NewPolyline([]geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	})
	f.Register(KeyText, func() *item.Item { return NewText(m, "Text", 12) })
	f.Register(KeyGroup, func() *item.Item { return NewGroup() })
}

// NewFactory returns a factory with every built-in kind registered.
func NewFactory(m textmetrics.Measurer) *item.Factory {
	f := item.NewFactory()
	Register(f, m)
	return f
}

func styleOf(it *item.Item) render.Style {
	return render.Style{
		Stroke:      it.StringProperty(PropStroke, "#000000"),
		Fill:        it.StringProperty(PropFill, ""),
		StrokeWidth: it.FloatProperty(PropStrokeWidth, 1),
	}
}

// validateStyle rejects style values no painter can use.
func validateStyle(c item.Change) (item.Change, bool) {
	if c.Kind != item.ChangeProperty {
		return c, true
	}
	switch c.Key {
	case PropStroke, PropFill:
		_, ok := c.Value.(string)
		return c, ok
	case PropStrokeWidth:
		w, ok := toFloat(c.Value)
		if !ok || w < 0 {
			return c, false
		}
		c.Value = w
	}
	return c, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// segmentPolygon returns the outline of a stroke from a to b, hw wide on
// each side.
func segmentPolygon(a, b geom.Point, hw float64) orb.Polygon {
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l < geom.Epsilon {
		return item.RectPolygon(geom.Rect{X: a.X - hw, Y: a.Y - hw, Width: 2 * hw, Height: 2 * hw})
	}
	u := d.Scale(1 / l)
	n := geom.Pt(-u.Y*hw, u.X*hw)
	a = a.Sub(u.Scale(hw))
	b = b.Add(u.Scale(hw))
	p1, p2, p3, p4 := a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)
	return orb.Polygon{orb.Ring{
		{p1.X, p1.Y}, {p2.X, p2.Y}, {p3.X, p3.Y}, {p4.X, p4.Y}, {p1.X, p1.Y},
	}}
}

func strokeShape(it *item.Item, pts []geom.Point) orb.MultiPolygon {
	hw := math.Max(hitTolerance, it.FloatProperty(PropStrokeWidth, 1)/2)
	var mp orb.MultiPolygon
	for i := 0; i+1 < len(pts); i++ {
		mp = append(mp, segmentPolygon(pts[i], pts[i+1], hw))
	}
	if len(mp) == 0 && len(pts) == 1 {
		mp = append(mp, segmentPolygon(pts[0], pts[0], hw))
	}
	return mp
}

func localPoints(it *item.Item) []geom.Point {
	pts := make([]geom.Point, it.NumPoints())
	for i := range pts {
		pts[i] = it.Point(i).Pos()
	}
	return pts
}

func boundsOf(pts []geom.Point) geom.Rect {
	if len(pts) == 0 {
		return geom.Rect{}
	}
	r := geom.RectFromPoints(pts[0], pts[0])
	for _, p := range pts[1:] {
		r = r.Union(geom.RectFromPoints(p, p))
	}
	return r.Normalized()
}
