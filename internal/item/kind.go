package item

import (
	"github.com/paulmach/orb"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/render"
)

// ChangeKind identifies which attribute a Change proposes.
type ChangeKind int

const (
	ChangePos ChangeKind = iota
	ChangeUnits
	ChangeRotation
	ChangeFlipped
	ChangeProperty
	ChangeGeometry
)

// Change is a proposed (or applied) attribute update passed to a Kind's
// hooks. Only the field matching Kind is meaningful.
type Change struct {
	Kind    ChangeKind
	Pos     geom.Point
	Units   Units
	Angle   int
	Flipped bool
	Key     string
	Value   any
}

// Kind is the behavior of a concrete item type. The engine only ever talks
// to items through this interface.
type Kind interface {
	// UniqueKey names the concrete type for the factory.
	UniqueKey() string

	// BoundingRect returns the item's own extent in local coordinates,
	// excluding children.
	BoundingRect(it *Item) geom.Rect

	// Shape returns the hit-test outline in local coordinates. A nil shape
	// falls back to the bounding rect.
	Shape(it *Item) orb.MultiPolygon

	Render(it *Item, p render.Painter)

	// ResizeItem moves pt to local and keeps the item's other points
	// consistent with it.
	ResizeItem(it *Item, pt *Point, local geom.Point)

	// ItemChanging may veto (ok=false) or adjust a proposed change.
	ItemChanging(it *Item, c Change) (Change, bool)

	// ItemChanged runs after a change is applied.
	ItemChanged(it *Item, c Change)

	// InsertPointAt picks the index a new point at local would take.
	InsertPointAt(it *Item, local geom.Point) (int, bool)

	// MinPoints is the fewest points the item can be reduced to.
	MinPoints() int

	// Clone returns an independent copy of any state the kind holds.
	Clone() Kind
}

// BaseKind provides default behavior for every Kind method except
// UniqueKey, BoundingRect and Clone.
type BaseKind struct{}

func (BaseKind) Shape(*Item) orb.MultiPolygon { return nil }

func (BaseKind) Render(*Item, render.Painter) {}

func (BaseKind) ResizeItem(_ *Item, pt *Point, local geom.Point) {
	pt.pos = local
}

func (BaseKind) ItemChanging(_ *Item, c Change) (Change, bool) { return c, true }

func (BaseKind) ItemChanged(*Item, Change) {}

func (BaseKind) InsertPointAt(*Item, geom.Point) (int, bool) { return 0, false }

func (BaseKind) MinPoints() int { return 0 }

// RectPolygon converts r into a single-ring polygon.
func RectPolygon(r geom.Rect) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{r.Left(), r.Top()},
		{r.Right(), r.Top()},
		{r.Right(), r.Bottom()},
		{r.Left(), r.Bottom()},
		{r.Left(), r.Top()},
	}}
}
