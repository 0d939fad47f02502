// Package item defines the scene-graph entities of a drawing: items, their
// connection points, and the Kind interface concrete item types implement.
package item

import (
	"maps"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/render"
	"github.com/inamate/diagrammer/backend-go/internal/typeid"
)

// Flags are the capabilities of an item.
type Flags uint32

const (
	Movable Flags = 1 << iota
	Rotatable
	Flippable
	Resizable
	InsertPoints
	RemovePoints
	InheritUnits
	SharedPalette
)

// Has reports whether every flag in x is set.
func (f Flags) Has(x Flags) bool { return f&x == x }

// PlaceType is how an item is created interactively.
type PlaceType int

const (
	// PlaceMouseUp items follow the cursor and drop on each release.
	PlaceMouseUp PlaceType = iota
	// PlaceMouseDownAndUp items span from the press to the release.
	PlaceMouseDownAndUp
	// PlaceTwoClick items span between two successive releases.
	PlaceTwoClick
)

// Geometry is a snapshot of an item's position and point positions.
type Geometry struct {
	Pos    geom.Point
	Points []geom.Point
}

// Item is an editable entity of the scene graph.
type Item struct {
	id        string
	kind      Kind
	pos       geom.Point
	units     Units
	angle     int
	flipped   bool
	flags     Flags
	placeType PlaceType
	props     map[string]any
	selected  bool
	visible   bool

	points   []*Point
	children []*Item
	parent   *Item
	owner    any
}

// New creates a standalone item of the given kind.
func New(kind Kind) *Item {
	return &Item{
		id:      typeid.NewItemID(),
		kind:    kind,
		flags:   Movable | Rotatable | Flippable,
		props:   make(map[string]any),
		visible: true,
	}
}

func (it *Item) ID() string               { return it.id }
func (it *Item) SetID(id string)          { it.id = id }
func (it *Item) Kind() Kind               { return it.kind }
func (it *Item) UniqueKey() string        { return it.kind.UniqueKey() }
func (it *Item) Pos() geom.Point          { return it.pos }
func (it *Item) Units() Units             { return it.units }
func (it *Item) RotationAngle() int       { return it.angle }
func (it *Item) IsFlipped() bool          { return it.flipped }
func (it *Item) Flags() Flags             { return it.flags }
func (it *Item) SetFlags(f Flags)         { it.flags = f }
func (it *Item) PlaceType() PlaceType     { return it.placeType }
func (it *Item) SetPlaceType(t PlaceType) { it.placeType = t }
func (it *Item) IsSelected() bool         { return it.selected }
func (it *Item) SetSelected(s bool)       { it.selected = s }
func (it *Item) IsVisible() bool          { return it.visible }
func (it *Item) SetVisible(v bool)        { it.visible = v }
func (it *Item) Parent() *Item            { return it.parent }

// Owner returns the collection the item is inserted into, if any.
func (it *Item) Owner() any { return it.owner }

// SetOwner is called by the owning collection on insertion and removal.
func (it *Item) SetOwner(o any) { it.owner = o }

// TopLevel returns the root of the item's parent chain.
func (it *Item) TopLevel() *Item {
	for it.parent != nil {
		it = it.parent
	}
	return it
}

// change runs the kind's hooks around apply. It returns false if vetoed.
func (it *Item) change(c Change, apply func(Change)) bool {
	c, ok := it.kind.ItemChanging(it, c)
	if !ok {
		return false
	}
	apply(c)
	it.kind.ItemChanged(it, c)
	return true
}

// SetPos moves the item in parent coordinates.
func (it *Item) SetPos(pos geom.Point) bool {
	return it.change(Change{Kind: ChangePos, Pos: pos}, func(c Change) {
		it.pos = c.Pos
	})
}

// SetRotationAngle sets the rotation. Angles that are not multiples of 90
// are rejected.
func (it *Item) SetRotationAngle(angle int) bool {
	if angle%90 != 0 {
		return false
	}
	angle = ((angle % 360) + 360) % 360
	return it.change(Change{Kind: ChangeRotation, Angle: angle}, func(c Change) {
		if c.Angle%90 == 0 {
			it.angle = ((c.Angle % 360) + 360) % 360
		}
	})
}

func (it *Item) SetFlipped(flipped bool) bool {
	return it.change(Change{Kind: ChangeFlipped, Flipped: flipped}, func(c Change) {
		it.flipped = c.Flipped
	})
}

// SetUnits switches the item's measurement system, rescaling local geometry
// so the physical size is unchanged. Children with InheritUnits follow.
func (it *Item) SetUnits(u Units) bool {
	if !u.Valid() {
		return false
	}
	return it.change(Change{Kind: ChangeUnits, Units: u}, func(c Change) {
		it.applyUnits(c.Units)
	})
}

func (it *Item) applyUnits(u Units) {
	f := UnitsScale(it.units, u)
	it.units = u
	if f == 1 {
		return
	}
	for _, pt := range it.points {
		pt.pos = pt.pos.Scale(f)
	}
	for _, child := range it.children {
		child.pos = child.pos.Scale(f)
		if child.flags.Has(InheritUnits) {
			child.SetUnits(u)
		}
	}
}

// Property returns the value stored under key.
func (it *Item) Property(key string) (any, bool) {
	v, ok := it.props[key]
	return v, ok
}

// SetProperty stores a value, subject to the kind's hooks.
func (it *Item) SetProperty(key string, value any) bool {
	return it.change(Change{Kind: ChangeProperty, Key: key, Value: value}, func(c Change) {
		it.props[c.Key] = c.Value
	})
}

// Properties returns a copy of the property map.
func (it *Item) Properties() map[string]any {
	return maps.Clone(it.props)
}

// StringProperty returns a string property or def.
func (it *Item) StringProperty(key, def string) string {
	if s, ok := it.props[key].(string); ok {
		return s
	}
	return def
}

// FloatProperty returns a numeric property or def.
func (it *Item) FloatProperty(key string, def float64) float64 {
	switch v := it.props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// ---- Transforms ----

// ParentTransform maps local coordinates to parent coordinates: mirror,
// then rotate, then translate.
func (it *Item) ParentTransform() geom.Matrix2D {
	m := geom.Translate(it.pos.X, it.pos.Y).Multiply(geom.QuarterTurn(it.angle))
	if it.flipped {
		m = m.Multiply(geom.MirrorX())
	}
	return m
}

func (it *Item) parentInverse() geom.Matrix2D {
	m := geom.QuarterTurn(-it.angle).Multiply(geom.Translate(-it.pos.X, -it.pos.Y))
	if it.flipped {
		m = geom.MirrorX().Multiply(m)
	}
	return m
}

// SceneTransform maps local coordinates to scene coordinates.
func (it *Item) SceneTransform() geom.Matrix2D {
	m := it.ParentTransform()
	for p := it.parent; p != nil; p = p.parent {
		m = p.ParentTransform().Multiply(m)
	}
	return m
}

func (it *Item) sceneInverse() geom.Matrix2D {
	m := it.parentInverse()
	for p := it.parent; p != nil; p = p.parent {
		m = m.Multiply(p.parentInverse())
	}
	return m
}

func (it *Item) MapToParent(p geom.Point) geom.Point   { return it.ParentTransform().Apply(p) }
func (it *Item) MapFromParent(p geom.Point) geom.Point { return it.parentInverse().Apply(p) }
func (it *Item) MapToScene(p geom.Point) geom.Point    { return it.SceneTransform().Apply(p) }
func (it *Item) MapFromScene(p geom.Point) geom.Point  { return it.sceneInverse().Apply(p) }

// RotateItem turns the item 90 degrees clockwise about pivot, given in
// parent coordinates.
func (it *Item) RotateItem(pivot geom.Point) bool {
	return it.turn(pivot, 90)
}

// RotateBackItem turns the item 90 degrees counterclockwise about pivot.
func (it *Item) RotateBackItem(pivot geom.Point) bool {
	return it.turn(pivot, 270)
}

func (it *Item) turn(pivot geom.Point, angle int) bool {
	if !it.SetRotationAngle(it.angle + angle) {
		return false
	}
	rel := geom.QuarterTurn(angle).Apply(it.pos.Sub(pivot))
	return it.SetPos(pivot.Add(rel))
}

// FlipItem mirrors the item across the vertical line through pivot. If the
// kind vetoes any part, the item is left as it was.
func (it *Item) FlipItem(pivot geom.Point) bool {
	angle, flipped := it.angle, it.flipped
	if !it.SetFlipped(!flipped) {
		return false
	}
	if !it.SetRotationAngle((360 - angle) % 360) {
		it.SetFlipped(flipped)
		return false
	}
	if !it.SetPos(geom.Pt(2*pivot.X-it.pos.X, it.pos.Y)) {
		it.SetRotationAngle(angle)
		it.SetFlipped(flipped)
		return false
	}
	return true
}

// ResizeItem moves pt, a point of this item, toward scenePos using the
// kind's resize rules.
func (it *Item) ResizeItem(pt *Point, scenePos geom.Point) bool {
	if pt == nil || pt.item != it || !it.flags.Has(Resizable) {
		return false
	}
	it.kind.ResizeItem(it, pt, it.MapFromScene(scenePos))
	it.kind.ItemChanged(it, Change{Kind: ChangeGeometry})
	return true
}

// Geometry snapshots the item's position and point positions.
func (it *Item) Geometry() Geometry {
	g := Geometry{Pos: it.pos, Points: make([]geom.Point, len(it.points))}
	for i, pt := range it.points {
		g.Points[i] = pt.pos
	}
	return g
}

// SetGeometry restores a snapshot taken with Geometry. Snapshots whose
// point count does not match are ignored.
func (it *Item) SetGeometry(g Geometry) bool {
	if len(g.Points) != len(it.points) {
		return false
	}
	it.pos = g.Pos
	for i, pt := range it.points {
		pt.pos = g.Points[i]
	}
	it.kind.ItemChanged(it, Change{Kind: ChangeGeometry})
	return true
}

// ---- Extent ----

// BoundingRect returns the local extent including children.
func (it *Item) BoundingRect() geom.Rect {
	r := it.kind.BoundingRect(it)
	for _, child := range it.children {
		r = r.Union(child.ParentTransform().TransformRect(child.BoundingRect()))
	}
	return r
}

// SceneBoundingRect returns the bounding rect in scene coordinates.
func (it *Item) SceneBoundingRect() geom.Rect {
	return it.SceneTransform().TransformRect(it.BoundingRect())
}

// Shape returns the hit-test outline in local coordinates.
func (it *Item) Shape() orb.MultiPolygon {
	if s := it.kind.Shape(it); s != nil {
		return s
	}
	return orb.MultiPolygon{RectPolygon(it.kind.BoundingRect(it))}
}

// Contains reports whether scenePos hits the item's shape or the shape of
// any of its children.
func (it *Item) Contains(scenePos geom.Point) bool {
	if !it.visible {
		return false
	}
	local := it.MapFromScene(scenePos)
	if planar.MultiPolygonContains(it.Shape(), orb.Point{local.X, local.Y}) {
		return true
	}
	for _, child := range it.children {
		if child.Contains(scenePos) {
			return true
		}
	}
	return false
}

// Render paints the item and then its children.
func (it *Item) Render(p render.Painter) {
	if !it.visible {
		return
	}
	p.Begin(it.id, it.SceneTransform())
	it.kind.Render(it, p)
	p.End()
	for _, child := range it.children {
		child.Render(p)
	}
}

// ---- Points ----

func (it *Item) Points() []*Point { return slices.Clone(it.points) }
func (it *Item) NumPoints() int   { return len(it.points) }

// Point returns the point at index i, or nil.
func (it *Item) Point(i int) *Point {
	if i < 0 || i >= len(it.points) {
		return nil
	}
	return it.points[i]
}

// PointIndex returns the index of pt, or -1.
func (it *Item) PointIndex(pt *Point) int {
	return slices.Index(it.points, pt)
}

// AddPoint appends a point. Points owned by another item are rejected.
func (it *Item) AddPoint(pt *Point) bool {
	return it.InsertPoint(len(it.points), pt)
}

// InsertPoint inserts pt at index i.
func (it *Item) InsertPoint(i int, pt *Point) bool {
	if pt == nil || pt.item != nil || i < 0 || i > len(it.points) {
		return false
	}
	pt.item = it
	it.points = slices.Insert(it.points, i, pt)
	return true
}

// RemovePoint detaches pt and returns its former index.
func (it *Item) RemovePoint(pt *Point) (int, bool) {
	i := it.PointIndex(pt)
	if i < 0 {
		return -1, false
	}
	it.points = slices.Delete(it.points, i, i+1)
	pt.item = nil
	return i, true
}

// NewPointAt creates a point at scenePos, placed where the kind says. The
// point is not inserted. Items without InsertPoints, and positions that
// would land before the first or after the last point, are rejected.
func (it *Item) NewPointAt(scenePos geom.Point) (*Point, int, bool) {
	if !it.flags.Has(InsertPoints) {
		return nil, -1, false
	}
	local := it.MapFromScene(scenePos)
	i, ok := it.kind.InsertPointAt(it, local)
	if !ok || i <= 0 || i >= len(it.points) {
		return nil, -1, false
	}
	return NewPoint(local, PointControl|PointConnection), i, true
}

// CanRemovePoint reports whether pt may be removed without violating the
// item's capabilities or minimum point count.
func (it *Item) CanRemovePoint(pt *Point) bool {
	return it.flags.Has(RemovePoints) && pt != nil && pt.item == it &&
		len(it.points) > it.kind.MinPoints()
}

// ---- Children ----

func (it *Item) Children() []*Item { return slices.Clone(it.children) }
func (it *Item) NumChildren() int  { return len(it.children) }

// ChildIndex returns the index of child, or -1.
func (it *Item) ChildIndex(child *Item) int {
	return slices.Index(it.children, child)
}

// IsAncestorOf reports whether it is a strict ancestor of other.
func (it *Item) IsAncestorOf(other *Item) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == it {
			return true
		}
	}
	return false
}

// AddChild appends child.
func (it *Item) AddChild(child *Item) bool {
	return it.InsertChild(len(it.children), child)
}

// InsertChild inserts child at index i. Children that already have a
// parent or owner, and insertions that would create a cycle, are rejected.
func (it *Item) InsertChild(i int, child *Item) bool {
	if child == nil || child == it || child.parent != nil || child.owner != nil {
		return false
	}
	if child.IsAncestorOf(it) || i < 0 || i > len(it.children) {
		return false
	}
	child.parent = it
	it.children = slices.Insert(it.children, i, child)
	if child.flags.Has(InheritUnits) && child.units != it.units {
		child.SetUnits(it.units)
	}
	return true
}

// RemoveChild detaches child and returns its former index.
func (it *Item) RemoveChild(child *Item) (int, bool) {
	i := it.ChildIndex(child)
	if i < 0 {
		return -1, false
	}
	it.children = slices.Delete(it.children, i, i+1)
	child.parent = nil
	return i, true
}

// Walk visits the item and its descendants depth-first until fn returns
// false.
func (it *Item) Walk(fn func(*Item) bool) bool {
	if !fn(it) {
		return false
	}
	for _, child := range it.children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// AllPoints returns the points of the item and its descendants.
func (it *Item) AllPoints() []*Point {
	var pts []*Point
	it.Walk(func(i *Item) bool {
		pts = append(pts, i.points...)
		return true
	})
	return pts
}

// ---- Copy ----

// Copy returns a deep copy with fresh identifiers, no parent, no owner and
// no links.
func (it *Item) Copy() *Item {
	c, _ := it.copyTree(nil)
	return c
}

func (it *Item) copyTree(pointMap map[*Point]*Point) (*Item, map[*Point]*Point) {
	c := &Item{
		id:        typeid.NewItemID(),
		kind:      it.kind.Clone(),
		pos:       it.pos,
		units:     it.units,
		angle:     it.angle,
		flipped:   it.flipped,
		flags:     it.flags,
		placeType: it.placeType,
		props:     maps.Clone(it.props),
		visible:   it.visible,
	}
	if c.props == nil {
		c.props = make(map[string]any)
	}
	for _, pt := range it.points {
		cp := pt.copy()
		cp.item = c
		c.points = append(c.points, cp)
		if pointMap != nil {
			pointMap[pt] = cp
		}
	}
	for _, child := range it.children {
		cc, _ := child.copyTree(pointMap)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c, pointMap
}

// CopyItems deep-copies items and re-creates the links between points
// inside the copied set. Links to points outside the set are dropped.
func CopyItems(items []*Item) []*Item {
	pointMap := make(map[*Point]*Point)
	out := make([]*Item, 0, len(items))
	var originals []*Point
	for _, it := range items {
		c, _ := it.copyTree(pointMap)
		out = append(out, c)
		originals = append(originals, it.AllPoints()...)
	}
	for _, orig := range originals {
		cp := pointMap[orig]
		for _, t := range orig.targets {
			if ct, ok := pointMap[t]; ok {
				cp.AddTarget(ct)
			}
		}
	}
	return out
}
