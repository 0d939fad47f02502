package scene

import (
	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/history"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

func (s *Scene) busy(op string) error {
	if s.gesture.dragging() {
		return s.reject(op, ErrGestureActive)
	}
	return nil
}

// movable returns the movable top-level items of items owned by the scene.
func (s *Scene) movable(items []*item.Item) []*item.Item {
	var out []*item.Item
	for _, it := range items {
		if it != nil && it.Owner() == s && it.Flags().Has(item.Movable) {
			out = append(out, it)
		}
	}
	return out
}

// clampDelta reduces delta so that bounds translated by it stays inside the
// content rect. Bounds that do not fit cannot move on that axis.
func (s *Scene) clampDelta(bounds geom.Rect, delta geom.Point) geom.Point {
	if !s.cfg.ForceInside {
		return delta
	}
	c := s.cfg.ContentRect
	clamp := func(d, lo, hi float64) float64 {
		if lo > hi {
			return 0
		}
		return max(lo, min(hi, d))
	}
	return geom.Pt(
		clamp(delta.X, c.Left()-bounds.Left(), c.Right()-bounds.Right()),
		clamp(delta.Y, c.Top()-bounds.Top(), c.Bottom()-bounds.Bottom()),
	)
}

func (s *Scene) clampPoint(p geom.Point) geom.Point {
	if !s.cfg.ForceInside {
		return p
	}
	c := s.cfg.ContentRect
	return geom.Pt(max(c.Left(), min(c.Right(), p.X)), max(c.Top(), min(c.Bottom(), p.Y)))
}

// MoveItems moves top-level items by delta as one command and keeps their
// connections coherent. It returns the delta actually applied, which the
// content clamp may have reduced.
func (s *Scene) MoveItems(items []*item.Item, delta geom.Point) (geom.Point, error) {
	if err := s.busy("move"); err != nil {
		return geom.Point{}, err
	}
	return s.moveItems(items, delta, true)
}

// MoveSelection moves the selected items by delta.
func (s *Scene) MoveSelection(delta geom.Point) (geom.Point, error) {
	sel := s.Selection()
	if len(sel) == 0 {
		return geom.Point{}, s.reject("move", ErrNothingSelected)
	}
	return s.MoveItems(sel, delta)
}

func (s *Scene) moveItems(items []*item.Item, delta geom.Point, final bool) (geom.Point, error) {
	items = s.movable(items)
	if len(items) == 0 {
		return geom.Point{}, s.reject("move", ErrNotMovable)
	}
	bounds, _ := boundsOf(items)
	delta = s.clampDelta(bounds, delta)
	if delta.IsZero() {
		if final {
			s.history.Seal()
		}
		return delta, nil
	}

	cmd := newMoveCommand(items)
	for _, it := range items {
		it.SetPos(it.Pos().Add(delta))
	}
	cmd.capture()

	s.maintainConnections(items, nil, &cmd.Compound)
	s.history.Push(cmd, final)
	return delta, nil
}

// ResizePoint drags pt, a control point of a resizable item, to scenePos as
// one command.
func (s *Scene) ResizePoint(pt *item.Point, scenePos geom.Point) error {
	if err := s.busy("resize"); err != nil {
		return err
	}
	return s.resizePoint(pt, scenePos, true)
}

// resizePoint applies one resize step. Linked items follow; the dragged
// point loses links it moved away from and gains links to points it now
// sits on (mid-gesture only under the loose policy).
func (s *Scene) resizePoint(pt *item.Point, scenePos geom.Point, final bool) error {
	if pt == nil || !s.Owns(pt.Item()) {
		return s.reject("resize", ErrNotInScene)
	}
	it := pt.Item()
	if !it.Flags().Has(item.Resizable) || !pt.IsControl() {
		return s.reject("resize", ErrNotResizable)
	}

	cmd := &resizeCommand{it: it, before: it.Geometry()}
	it.ResizeItem(pt, s.clampPoint(scenePos))
	cmd.after = it.Geometry()

	s.maintainConnections([]*item.Item{it}, pt, &cmd.Compound)
	s.severDiverged(pt, &cmd.Compound)
	mode := s.cfg.PlacePolicy
	if final {
		mode = item.PlaceCommit
	}
	s.connectCoincident(pt, mode, &cmd.Compound)

	s.history.Push(cmd, final)
	return nil
}

// RotateSelection turns the selected items 90 degrees clockwise about the
// selection centroid.
func (s *Scene) RotateSelection() error {
	return s.transformSelection(history.KindRotate, "Rotate", item.Rotatable, ErrNotRotatable,
		(*item.Item).RotateItem)
}

// RotateBackSelection turns the selected items 90 degrees counterclockwise.
func (s *Scene) RotateBackSelection() error {
	return s.transformSelection(history.KindRotateBack, "Rotate Back", item.Rotatable, ErrNotRotatable,
		(*item.Item).RotateBackItem)
}

// FlipSelection mirrors the selected items across the vertical line
// through the selection centroid.
func (s *Scene) FlipSelection() error {
	return s.transformSelection(history.KindFlip, "Flip", item.Flippable, ErrNotFlippable,
		(*item.Item).FlipItem)
}

func (s *Scene) transformSelection(kind history.Kind, title string, flag item.Flags, rejectErr error,
	op func(*item.Item, geom.Point) bool) error {
	if err := s.busy(title); err != nil {
		return err
	}
	sel := s.Selection()
	if len(sel) == 0 {
		return s.reject(title, ErrNothingSelected)
	}
	var items []*item.Item
	for _, it := range sel {
		if it.Flags().Has(flag) {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return s.reject(title, rejectErr)
	}

	pivot, _ := s.SelectionCentroid()

	cmd := &transformCommand{kind: kind, title: title, items: items}
	for _, it := range items {
		cmd.before = append(cmd.before, placementOf(it))
		op(it, pivot)
		cmd.after = append(cmd.after, placementOf(it))
	}

	s.maintainConnections(items, nil, &cmd.Compound)
	s.history.Push(cmd, true)
	return nil
}

// InsertPoint adds a point to it at scenePos, snapped to the grid, at the
// index the item's kind picks.
func (s *Scene) InsertPoint(it *item.Item, scenePos geom.Point) (*item.Point, error) {
	if err := s.busy("insert point"); err != nil {
		return nil, err
	}
	if !s.Owns(it) {
		return nil, s.reject("insert point", ErrNotInScene)
	}
	pt, i, ok := it.NewPointAt(s.RoundPointToGrid(scenePos))
	if !ok || !it.InsertPoint(i, pt) {
		return nil, s.reject("insert point", ErrCannotInsertPoint)
	}
	s.history.Push(&pointCommand{kind: history.KindInsertPoint, it: it, pt: pt, index: i}, true)
	return pt, nil
}

// RemovePoint removes pt from its item, severing its links first.
func (s *Scene) RemovePoint(pt *item.Point) error {
	if err := s.busy("remove point"); err != nil {
		return err
	}
	if pt == nil || !s.Owns(pt.Item()) {
		return s.reject("remove point", ErrNotInScene)
	}
	it := pt.Item()
	if !it.CanRemovePoint(pt) {
		return s.reject("remove point", ErrCannotRemovePoint)
	}
	cmd := &pointCommand{kind: history.KindRemovePoint, it: it, pt: pt, index: it.PointIndex(pt)}
	for _, t := range pt.Targets() {
		s.disconnect(pt, t, &cmd.Compound)
	}
	it.RemovePoint(pt)
	s.history.Push(cmd, true)
	return nil
}

// ---- Clipboard ----

// CopySelection returns deep copies of the selected items, keeping the
// links between them.
func (s *Scene) CopySelection() []*item.Item {
	return item.CopyItems(s.Selection())
}

// Cut copies the selection and then removes it.
func (s *Scene) Cut() ([]*item.Item, error) {
	sel := s.Selection()
	if len(sel) == 0 {
		return nil, s.reject("cut", ErrNothingSelected)
	}
	copies := item.CopyItems(sel)
	if err := s.busy("cut"); err != nil {
		return nil, err
	}
	cmd, err := s.removeItems(sel, "Cut")
	if err != nil {
		return nil, err
	}
	s.history.Push(cmd, true)
	return copies, nil
}

// Paste adds fresh copies of items, offset by the paste offset, and selects
// them. Pasted items are not linked to what they land on.
func (s *Scene) Paste(items []*item.Item) ([]*item.Item, error) {
	if err := s.busy("paste"); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, s.reject("paste", ErrNilItem)
	}
	copies := item.CopyItems(items)
	off := geom.Pt(s.cfg.PasteOffset, s.cfg.PasteOffset)
	for _, c := range copies {
		c.SetPos(c.Pos().Add(off))
	}
	cmd, err := s.addItems(copies, len(s.items), false, "Paste")
	if err != nil {
		return nil, err
	}
	s.history.Push(cmd, true)
	s.SetSelection(copies)
	return copies, nil
}
