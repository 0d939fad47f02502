package shapes

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
)

// PropClosed closes a polyline into a polygon.
const PropClosed = "closed"

type polylineKind struct {
	item.BaseKind
}

// NewPolyline creates an open polyline through pts. Points can be inserted
// and removed down to two.
func NewPolyline(pts []geom.Point) *item.Item {
	it := item.New(&polylineKind{})
	it.SetFlags(item.Movable | item.Rotatable | item.Flippable | item.Resizable |
		item.InsertPoints | item.RemovePoints)
	it.SetPlaceType(item.PlaceTwoClick)
	for _, p := range pts {
		it.AddPoint(item.NewPoint(p, item.PointControl|item.PointConnection))
	}
	return it
}

func (k *polylineKind) UniqueKey() string { return KeyPolyline }
func (k *polylineKind) Clone() item.Kind  { return &polylineKind{} }
func (k *polylineKind) MinPoints() int    { return 2 }

func (k *polylineKind) BoundingRect(it *item.Item) geom.Rect {
	return boundsOf(localPoints(it))
}

func (k *polylineKind) Shape(it *item.Item) orb.MultiPolygon {
	pts := localPoints(it)
	if closed(it) && len(pts) > 2 {
		ring := make(orb.Ring, 0, len(pts)+1)
		for _, p := range pts {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		ring = append(ring, ring[0])
		return append(strokeShape(it, append(pts, pts[0])), orb.Polygon{ring})
	}
	return strokeShape(it, pts)
}

func (k *polylineKind) Render(it *item.Item, p render.Painter) {
	style := styleOf(it)
	if !closed(it) {
		style.Fill = ""
	}
	p.Path(render.PolylinePath(localPoints(it), closed(it)), style)
}

// InsertPointAt places a new point on the segment nearest to local.
func (k *polylineKind) InsertPointAt(it *item.Item, local geom.Point) (int, bool) {
	pts := localPoints(it)
	if len(pts) < 2 {
		return 0, false
	}
	best, bestDist := -1, math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		if d := segmentDist(local, pts[i], pts[i+1]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best + 1, true
}

func (k *polylineKind) ItemChanging(_ *item.Item, c item.Change) (item.Change, bool) {
	if c.Kind == item.ChangeProperty && c.Key == PropClosed {
		_, ok := c.Value.(bool)
		return c, ok
	}
	return validateStyle(c)
}

func closed(it *item.Item) bool {
	v, _ := it.Property(PropClosed)
	b, _ := v.(bool)
	return b
}

// segmentDist returns the distance from p to the segment ab.
func segmentDist(p, a, b geom.Point) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(d.Scale(t)))
}
