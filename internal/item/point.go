package item

import (
	"slices"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/typeid"
)

// PointFlags are the capabilities of a connection point.
type PointFlags uint8

const (
	// PointControl points can be dragged to resize their item.
	PointControl PointFlags = 1 << iota
	// PointConnection points may link to points on other items.
	PointConnection
	// PointFree points are left alone by connection maintenance.
	PointFree
)

// PlaceMode is the connection policy in effect when points are tested for
// linking.
type PlaceMode int

const (
	// PlaceStrict defers new connections until a gesture commits.
	PlaceStrict PlaceMode = iota
	// PlaceLoose allows connections while a gesture is still in progress.
	PlaceLoose
	// PlaceCommit is used when a gesture completes.
	PlaceCommit
)

// DefaultPointSize is the hit radius of a new point.
const DefaultPointSize = 4.0

// Point is a connection point owned by an item.
type Point struct {
	id       string
	item     *Item
	pos      geom.Point
	size     float64
	category int
	flags    PointFlags
	targets  []*Point
}

// NewPoint creates an unowned point at local position pos.
func NewPoint(pos geom.Point, flags PointFlags) *Point {
	return &Point{
		id:    typeid.NewPointID(),
		pos:   pos,
		size:  DefaultPointSize,
		flags: flags,
	}
}

func (p *Point) ID() string            { return p.id }
func (p *Point) SetID(id string)       { p.id = id }
func (p *Point) Item() *Item           { return p.item }
func (p *Point) Pos() geom.Point       { return p.pos }
func (p *Point) Size() float64         { return p.size }
func (p *Point) Category() int         { return p.category }
func (p *Point) Flags() PointFlags     { return p.flags }
func (p *Point) SetCategory(c int)     { p.category = c }
func (p *Point) SetFlags(f PointFlags) { p.flags = f }

// SetPos moves the point in its item's local coordinates.
func (p *Point) SetPos(pos geom.Point) { p.pos = pos }

// SetSize sets the hit radius; non-positive sizes are ignored.
func (p *Point) SetSize(size float64) {
	if size > 0 {
		p.size = size
	}
}

func (p *Point) IsControl() bool    { return p.flags&PointControl != 0 }
func (p *Point) IsConnection() bool { return p.flags&PointConnection != 0 }
func (p *Point) IsFree() bool       { return p.flags&PointFree != 0 }

// ScenePos returns the point's position in scene coordinates.
func (p *Point) ScenePos() geom.Point {
	if p.item == nil {
		return p.pos
	}
	return p.item.MapToScene(p.pos)
}

// Contains reports whether scenePos is within the point's hit radius.
func (p *Point) Contains(scenePos geom.Point) bool {
	return p.ScenePos().Dist(scenePos) <= p.size
}

// AddTarget links p and t in both directions. Linking to nil, to p itself,
// to a point of the same item, or to an existing target is rejected.
func (p *Point) AddTarget(t *Point) bool {
	if t == nil || t == p {
		return false
	}
	if p.item != nil && p.item == t.item {
		return false
	}
	if p.IsTarget(t) {
		return false
	}
	p.targets = append(p.targets, t)
	t.targets = append(t.targets, p)
	return true
}

// RemoveTarget unlinks p and t in both directions.
func (p *Point) RemoveTarget(t *Point) bool {
	if t == nil || !p.IsTarget(t) {
		return false
	}
	p.targets = slices.DeleteFunc(p.targets, func(q *Point) bool { return q == t })
	t.targets = slices.DeleteFunc(t.targets, func(q *Point) bool { return q == p })
	return true
}

// IsTarget reports whether p is linked to t.
func (p *Point) IsTarget(t *Point) bool {
	return slices.Contains(p.targets, t)
}

// Targets returns the linked points in link order.
func (p *Point) Targets() []*Point {
	return slices.Clone(p.targets)
}

// ClearTargets unlinks every target and returns them.
func (p *Point) ClearTargets() []*Point {
	targets := p.Targets()
	for _, t := range targets {
		p.RemoveTarget(t)
	}
	return targets
}

// ShouldConnect reports whether p and other may be linked now: both are
// connection points on different items, they coincide, and mode allows it.
func (p *Point) ShouldConnect(other *Point, mode PlaceMode) bool {
	if other == nil || other == p || mode == PlaceStrict {
		return false
	}
	if !p.IsConnection() || !other.IsConnection() {
		return false
	}
	if p.item == nil || other.item == nil || p.item == other.item {
		return false
	}
	return p.ScenePos().Near(other.ScenePos(), geom.Epsilon)
}

// ShouldDisconnect reports whether p and other no longer coincide.
func (p *Point) ShouldDisconnect(other *Point) bool {
	return !p.ScenePos().Near(other.ScenePos(), geom.Epsilon)
}

func (p *Point) copy() *Point {
	return &Point{
		id:       typeid.NewPointID(),
		pos:      p.pos,
		size:     p.size,
		category: p.category,
		flags:    p.flags,
	}
}
