package shapes

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
)

// Frame point indices. Corners come first so that points 0 and 1 span the
// frame during two-point placement.
const (
	TopLeft = iota
	BottomRight
	TopRight
	BottomLeft
	TopMiddle
	BottomMiddle
	MiddleLeft
	MiddleRight
	framePoints
)

const ellipseSegments = 32

// frameKind is a rectangle or ellipse described by eight control points.
// The corners define the frame; the midpoints are always recomputed.
type frameKind struct {
	item.BaseKind
	ellipse bool
}

// NewRect creates a rectangle covering r.
func NewRect(r geom.Rect) *item.Item {
	it := newFrame(&frameKind{}, r)
	it.SetPlaceType(item.PlaceTwoClick)
	return it
}

// NewEllipse creates an ellipse inscribed in r.
func NewEllipse(r geom.Rect) *item.Item {
	it := newFrame(&frameKind{ellipse: true}, r)
	it.SetPlaceType(item.PlaceMouseDownAndUp)
	return it
}

func newFrame(k *frameKind, r geom.Rect) *item.Item {
	it := item.New(k)
	it.SetFlags(item.Movable | item.Rotatable | item.Flippable | item.Resizable)
	for range framePoints {
		it.AddPoint(item.NewPoint(geom.Point{}, item.PointControl|item.PointConnection))
	}
	setFrame(it, r.Left(), r.Top(), r.Right(), r.Bottom())
	return it
}

func (k *frameKind) UniqueKey() string {
	if k.ellipse {
		return KeyEllipse
	}
	return KeyRect
}

func (k *frameKind) Clone() item.Kind { return &frameKind{ellipse: k.ellipse} }
func (k *frameKind) MinPoints() int   { return framePoints }

func (k *frameKind) BoundingRect(it *item.Item) geom.Rect {
	l, t, r, b := frameEdges(it)
	return geom.RectFromPoints(geom.Pt(l, t), geom.Pt(r, b)).Normalized()
}

func (k *frameKind) Shape(it *item.Item) orb.MultiPolygon {
	if !k.ellipse {
		return nil
	}
	rect := k.BoundingRect(it)
	c := rect.Center()
	ring := make(orb.Ring, 0, ellipseSegments+1)
	for i := 0; i <= ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i%ellipseSegments) / ellipseSegments
		ring = append(ring, orb.Point{c.X + rect.Width/2*math.Cos(a), c.Y + rect.Height/2*math.Sin(a)})
	}
	return orb.MultiPolygon{orb.Polygon{ring}}
}

func (k *frameKind) Render(it *item.Item, p render.Painter) {
	rect := k.BoundingRect(it)
	if k.ellipse {
		p.Path(render.EllipsePath(rect), styleOf(it))
		return
	}
	p.Path(render.RectPath(rect), styleOf(it))
}

// ResizeItem moves a corner, keeping the opposite corner fixed, or moves
// the edge a midpoint sits on.
func (k *frameKind) ResizeItem(it *item.Item, pt *item.Point, local geom.Point) {
	l, t, r, b := frameEdges(it)
	switch it.PointIndex(pt) {
	case TopLeft:
		l, t = local.X, local.Y
	case BottomRight:
		r, b = local.X, local.Y
	case TopRight:
		r, t = local.X, local.Y
	case BottomLeft:
		l, b = local.X, local.Y
	case TopMiddle:
		t = local.Y
	case BottomMiddle:
		b = local.Y
	case MiddleLeft:
		l = local.X
	case MiddleRight:
		r = local.X
	default:
		return
	}
	setFrame(it, l, t, r, b)
}

func (k *frameKind) ItemChanging(_ *item.Item, c item.Change) (item.Change, bool) {
	return validateStyle(c)
}

func frameEdges(it *item.Item) (l, t, r, b float64) {
	tl, br := it.Point(TopLeft).Pos(), it.Point(BottomRight).Pos()
	return tl.X, tl.Y, br.X, br.Y
}

func setFrame(it *item.Item, l, t, r, b float64) {
	mx, my := (l+r)/2, (t+b)/2
	it.Point(TopLeft).SetPos(geom.Pt(l, t))
	it.Point(BottomRight).SetPos(geom.Pt(r, b))
	it.Point(TopRight).SetPos(geom.Pt(r, t))
	it.Point(BottomLeft).SetPos(geom.Pt(l, b))
	it.Point(TopMiddle).SetPos(geom.Pt(mx, t))
	it.Point(BottomMiddle).SetPos(geom.Pt(mx, b))
	it.Point(MiddleLeft).SetPos(geom.Pt(l, my))
	it.Point(MiddleRight).SetPos(geom.Pt(r, my))
}
