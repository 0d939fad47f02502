package scene

import (
	"slices"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/history"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

// addCommand inserts top-level items at recorded indices. Its children are
// the link changes made once the items were in place.
type addCommand struct {
	history.Compound
	s       *Scene
	title   string
	items   []*item.Item
	indices []int
}

func (c *addCommand) Kind() history.Kind             { return history.KindAdd }
func (c *addCommand) Title() string                  { return c.title }
func (c *addCommand) MergeWith(history.Command) bool { return false }

func (c *addCommand) Redo() {
	for i, it := range c.items {
		c.s.insertRaw(c.indices[i], it)
	}
	c.RedoChildren()
}

func (c *addCommand) Undo() {
	c.UndoChildren()
	for i := len(c.items) - 1; i >= 0; i-- {
		c.s.removeRaw(c.items[i])
	}
}

// removeCommand takes top-level items out of the scene. Its children sever
// links to the items left behind and run before the removal.
type removeCommand struct {
	history.Compound
	s       *Scene
	title   string
	items   []*item.Item // ascending by index
	indices []int
}

func (c *removeCommand) Kind() history.Kind             { return history.KindRemove }
func (c *removeCommand) Title() string                  { return c.title }
func (c *removeCommand) MergeWith(history.Command) bool { return false }

func (c *removeCommand) Redo() {
	c.RedoChildren()
	for _, it := range c.items {
		c.s.removeRaw(it)
	}
}

func (c *removeCommand) Undo() {
	for i, it := range c.items {
		c.s.insertRaw(c.indices[i], it)
	}
	c.UndoChildren()
}

// moveCommand records item positions before and after a move.
type moveCommand struct {
	history.Compound
	items  []*item.Item
	before []geom.Point
	after  []geom.Point
}

func newMoveCommand(items []*item.Item) *moveCommand {
	c := &moveCommand{items: items, before: make([]geom.Point, len(items))}
	for i, it := range items {
		c.before[i] = it.Pos()
	}
	return c
}

func (c *moveCommand) capture() {
	c.after = make([]geom.Point, len(c.items))
	for i, it := range c.items {
		c.after[i] = it.Pos()
	}
}

func (c *moveCommand) Kind() history.Kind { return history.KindMove }
func (c *moveCommand) Title() string      { return "Move" }

func (c *moveCommand) Redo() {
	for i, it := range c.items {
		it.SetPos(c.after[i])
	}
	c.RedoChildren()
}

func (c *moveCommand) Undo() {
	c.UndoChildren()
	for i, it := range c.items {
		it.SetPos(c.before[i])
	}
}

func (c *moveCommand) MergeWith(other history.Command) bool {
	o, ok := other.(*moveCommand)
	if !ok || !slices.Equal(c.items, o.items) {
		return false
	}
	c.after = o.after
	c.MergeChildren(&o.Compound)
	return true
}

// resizeCommand records one item's geometry before and after a resize.
type resizeCommand struct {
	history.Compound
	it     *item.Item
	before item.Geometry
	after  item.Geometry
}

func (c *resizeCommand) Kind() history.Kind { return history.KindResize }
func (c *resizeCommand) Title() string      { return "Resize" }

func (c *resizeCommand) Redo() {
	c.it.SetGeometry(c.after)
	c.RedoChildren()
}

func (c *resizeCommand) Undo() {
	c.UndoChildren()
	c.it.SetGeometry(c.before)
}

func (c *resizeCommand) MergeWith(other history.Command) bool {
	o, ok := other.(*resizeCommand)
	if !ok || o.it != c.it {
		return false
	}
	c.after = o.after
	c.MergeChildren(&o.Compound)
	return true
}

// placement is an item's position and orientation.
type placement struct {
	pos     geom.Point
	angle   int
	flipped bool
}

func placementOf(it *item.Item) placement {
	return placement{pos: it.Pos(), angle: it.RotationAngle(), flipped: it.IsFlipped()}
}

func (p placement) apply(it *item.Item) {
	it.SetFlipped(p.flipped)
	it.SetRotationAngle(p.angle)
	it.SetPos(p.pos)
}

// transformCommand covers rotate, rotate back and flip of a selection.
type transformCommand struct {
	history.Compound
	kind   history.Kind
	title  string
	items  []*item.Item
	before []placement
	after  []placement
}

func (c *transformCommand) Kind() history.Kind             { return c.kind }
func (c *transformCommand) Title() string                  { return c.title }
func (c *transformCommand) MergeWith(history.Command) bool { return false }

func (c *transformCommand) Redo() {
	for i, it := range c.items {
		c.after[i].apply(it)
	}
	c.RedoChildren()
}

func (c *transformCommand) Undo() {
	c.UndoChildren()
	for i, it := range c.items {
		c.before[i].apply(it)
	}
}

// reorderCommand swaps the whole z-order.
type reorderCommand struct {
	s      *Scene
	title  string
	before []*item.Item
	after  []*item.Item
}

func (c *reorderCommand) Kind() history.Kind             { return history.KindReorder }
func (c *reorderCommand) Title() string                  { return c.title }
func (c *reorderCommand) MergeWith(history.Command) bool { return false }
func (c *reorderCommand) Redo()                          { c.s.items = slices.Clone(c.after) }
func (c *reorderCommand) Undo()                          { c.s.items = slices.Clone(c.before) }

// linkCommand connects or disconnects two points.
type linkCommand struct {
	kind history.Kind
	a, b *item.Point
}

func (c *linkCommand) Kind() history.Kind { return c.kind }

func (c *linkCommand) Title() string {
	if c.kind == history.KindConnect {
		return "Connect"
	}
	return "Disconnect"
}

func (c *linkCommand) MergeWith(history.Command) bool { return false }

func (c *linkCommand) Redo() {
	if c.kind == history.KindConnect {
		c.a.AddTarget(c.b)
	} else {
		c.a.RemoveTarget(c.b)
	}
}

func (c *linkCommand) Undo() {
	if c.kind == history.KindConnect {
		c.a.RemoveTarget(c.b)
	} else {
		c.a.AddTarget(c.b)
	}
}

// pointCommand inserts or removes a point. When removing, the children
// sever the point's links first.
type pointCommand struct {
	history.Compound
	kind  history.Kind
	it    *item.Item
	pt    *item.Point
	index int
}

func (c *pointCommand) Kind() history.Kind             { return c.kind }
func (c *pointCommand) MergeWith(history.Command) bool { return false }

func (c *pointCommand) Title() string {
	if c.kind == history.KindInsertPoint {
		return "Insert Point"
	}
	return "Remove Point"
}

func (c *pointCommand) Redo() {
	if c.kind == history.KindInsertPoint {
		c.it.InsertPoint(c.index, c.pt)
		c.RedoChildren()
		return
	}
	c.RedoChildren()
	c.it.RemovePoint(c.pt)
}

func (c *pointCommand) Undo() {
	if c.kind == history.KindInsertPoint {
		c.UndoChildren()
		c.it.RemovePoint(c.pt)
		return
	}
	c.it.InsertPoint(c.index, c.pt)
	c.UndoChildren()
}

// structureCommand is a group or ungroup: a sequence of remove and add
// children and nothing else.
type structureCommand struct {
	history.Compound
	kind  history.Kind
	title string
}

func (c *structureCommand) Kind() history.Kind             { return c.kind }
func (c *structureCommand) Title() string                  { return c.title }
func (c *structureCommand) MergeWith(history.Command) bool { return false }
func (c *structureCommand) Redo()                          { c.RedoChildren() }
func (c *structureCommand) Undo()                          { c.UndoChildren() }
