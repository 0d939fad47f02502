package shapes

import (
	"github.com/paulmach/orb"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

type groupKind struct {
	item.BaseKind
}

// NewGroup creates an empty composite item. Its extent and hit area are
// those of its children.
func NewGroup() *item.Item {
	it := item.New(&groupKind{})
	it.SetFlags(item.Movable | item.Rotatable | item.Flippable)
	return it
}

func (k *groupKind) UniqueKey() string { return KeyGroup }
func (k *groupKind) Clone() item.Kind  { return &groupKind{} }

func (k *groupKind) BoundingRect(it *item.Item) geom.Rect {
	children := it.Children()
	if len(children) == 0 {
		return geom.Rect{}
	}
	rects := make([]geom.Rect, len(children))
	for i, child := range children {
		rects[i] = child.ParentTransform().TransformRect(child.BoundingRect())
	}
	return geom.UnionAll(rects)
}

func (k *groupKind) Shape(*item.Item) orb.MultiPolygon {
	return orb.MultiPolygon{}
}
