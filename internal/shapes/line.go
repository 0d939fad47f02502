package shapes

import (
	"github.com/paulmach/orb"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
)

type lineKind struct {
	item.BaseKind
}

// NewLine creates a straight connector from a to b. Both ends are control
// and connection points.
func NewLine(a, b geom.Point) *item.Item {
	it := item.New(&lineKind{})
	it.SetFlags(item.Movable | item.Rotatable | item.Flippable | item.Resizable)
	it.SetPlaceType(item.PlaceMouseDownAndUp)
	it.AddPoint(item.NewPoint(a, item.PointControl|item.PointConnection))
	it.AddPoint(item.NewPoint(b, item.PointControl|item.PointConnection))
	return it
}

func (k *lineKind) UniqueKey() string { return KeyLine }
func (k *lineKind) Clone() item.Kind  { return &lineKind{} }
func (k *lineKind) MinPoints() int    { return 2 }

func (k *lineKind) BoundingRect(it *item.Item) geom.Rect {
	return boundsOf(localPoints(it))
}

func (k *lineKind) Shape(it *item.Item) orb.MultiPolygon {
	return strokeShape(it, localPoints(it))
}

func (k *lineKind) Render(it *item.Item, p render.Painter) {
	style := styleOf(it)
	style.Fill = ""
	p.Path(render.PolylinePath(localPoints(it), false), style)
}

func (k *lineKind) ItemChanging(_ *item.Item, c item.Change) (item.Change, bool) {
	return validateStyle(c)
}
