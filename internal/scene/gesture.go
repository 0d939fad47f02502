package scene

import (
	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

// State is the gesture state of a scene.
type State int

const (
	StateReady State = iota
	StateSelect
	StateMoveItems
	StateResizeItem
	StateRubberBand
	StatePlacing
)

func (st State) String() string {
	switch st {
	case StateSelect:
		return "select"
	case StateMoveItems:
		return "move"
	case StateResizeItem:
		return "resize"
	case StateRubberBand:
		return "rubberband"
	case StatePlacing:
		return "placing"
	default:
		return "ready"
	}
}

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Modifiers are keyboard modifiers held during a gesture.
type Modifiers uint8

const (
	// ModShift toggles items in and out of the selection.
	ModShift Modifiers = 1 << iota
	ModCtrl
)

type gesture struct {
	state   State
	press   geom.Point
	applied geom.Point
	point   *item.Point
	rubber  geom.Rect
	moved   bool

	template *item.Item
	preview  *item.Item
	pressed  bool
	clicks   int
}

func (g *gesture) dragging() bool {
	return g.state == StateMoveItems || g.state == StateResizeItem
}

// State returns the current gesture state.
func (s *Scene) State() State { return s.gesture.state }

// Preview returns the item being placed, or nil. It is not in the scene.
func (s *Scene) Preview() *item.Item { return s.gesture.preview }

// RubberBand returns the selection rectangle while one is being dragged.
func (s *Scene) RubberBand() (geom.Rect, bool) {
	return s.gesture.rubber, s.gesture.state == StateRubberBand
}

// SetNewItem enters placement mode for copies of template. The template
// itself is never inserted.
func (s *Scene) SetNewItem(template *item.Item) error {
	if template == nil {
		return s.reject("set new item", ErrNilItem)
	}
	if template.Owner() != nil || template.Parent() != nil {
		return s.reject("set new item", ErrAlreadyOwned)
	}
	s.Cancel()
	s.gesture = gesture{state: StatePlacing, template: template, preview: template.Copy()}
	return nil
}

// Cancel aborts placement or rubber band selection without changing the
// scene, and rolls back a drag in progress.
func (s *Scene) Cancel() {
	if s.gesture.dragging() {
		s.history.Rollback()
	}
	s.gesture = gesture{}
}

// MouseDown starts a gesture at scenePos.
func (s *Scene) MouseDown(scenePos geom.Point, button Button, mods Modifiers) {
	g := &s.gesture
	if button == ButtonRight {
		if g.state == StatePlacing || g.state == StateRubberBand {
			s.Cancel()
		}
		return
	}

	if g.state == StatePlacing {
		if g.preview.PlaceType() == item.PlaceMouseDownAndUp {
			s.spanStart(scenePos)
			g.pressed = true
		}
		return
	}

	g.press = scenePos
	g.applied = geom.Point{}
	if pt := s.PointAt(scenePos); pt != nil {
		g.state = StateResizeItem
		g.point = pt
		return
	}
	if it := s.ItemAt(scenePos); it != nil {
		switch {
		case mods&ModShift != 0:
			s.ToggleSelected(it)
		case !it.IsSelected():
			s.Select(it, false)
		}
		g.state = StateSelect
		return
	}
	g.state = StateRubberBand
	g.rubber = geom.RectFromPoints(scenePos, scenePos)
}

// MouseMove advances the current gesture.
func (s *Scene) MouseMove(scenePos geom.Point, mods Modifiers) {
	g := &s.gesture
	switch g.state {
	case StatePlacing:
		s.trackPreview(scenePos)
	case StateSelect:
		if len(s.movable(s.Selection())) == 0 || scenePos == g.press {
			return
		}
		g.state = StateMoveItems
		s.dragMove(scenePos, false)
	case StateMoveItems:
		s.dragMove(scenePos, false)
	case StateResizeItem:
		g.moved = true
		s.resizePoint(g.point, s.RoundPointToGrid(scenePos), false)
	case StateRubberBand:
		g.rubber = geom.RectFromPoints(g.press, scenePos)
	}
}

// MouseUp completes the current gesture.
func (s *Scene) MouseUp(scenePos geom.Point, button Button, mods Modifiers) {
	g := &s.gesture
	if button == ButtonRight {
		return
	}
	switch g.state {
	case StatePlacing:
		s.placeRelease(scenePos)
		return
	case StateMoveItems:
		s.dragMove(scenePos, true)
	case StateResizeItem:
		// A click on a point without a drag leaves it where it is.
		if g.moved {
			s.resizePoint(g.point, s.RoundPointToGrid(scenePos), true)
		}
		s.history.Seal()
	case StateRubberBand:
		g.rubber = geom.RectFromPoints(g.press, scenePos)
		picked := s.ItemsInRect(g.rubber)
		if mods&ModShift != 0 {
			picked = append(s.Selection(), picked...)
		}
		s.SetSelection(picked)
	}
	s.gesture = gesture{}
}

// dragMove moves the selection so its total displacement since the press
// is the grid-snapped cursor offset.
func (s *Scene) dragMove(scenePos geom.Point, final bool) {
	g := &s.gesture
	target := s.RoundPointToGrid(scenePos.Sub(g.press))
	applied, err := s.moveItems(s.Selection(), target.Sub(g.applied), final)
	if err != nil {
		if final {
			s.history.Seal()
		}
		return
	}
	g.applied = g.applied.Add(applied)
}

// ---- Placement ----

func spannable(it *item.Item) bool {
	return it.NumPoints() >= 2 && it.Flags().Has(item.Resizable)
}

func (s *Scene) spanStart(scenePos geom.Point) {
	p := s.RoundPointToGrid(scenePos)
	preview := s.gesture.preview
	preview.SetPos(p)
	if spannable(preview) {
		preview.ResizeItem(preview.Point(0), p)
		preview.ResizeItem(preview.Point(1), p)
	}
}

func (s *Scene) spanEnd(scenePos geom.Point) {
	preview := s.gesture.preview
	if spannable(preview) {
		preview.ResizeItem(preview.Point(1), s.RoundPointToGrid(scenePos))
	}
}

func (s *Scene) trackPreview(scenePos geom.Point) {
	g := &s.gesture
	switch g.preview.PlaceType() {
	case item.PlaceMouseDownAndUp:
		if g.pressed {
			s.spanEnd(scenePos)
			return
		}
	case item.PlaceTwoClick:
		if g.clicks == 1 {
			s.spanEnd(scenePos)
			return
		}
	}
	g.preview.SetPos(s.RoundPointToGrid(scenePos))
}

func (s *Scene) placeRelease(scenePos geom.Point) {
	g := &s.gesture
	switch g.preview.PlaceType() {
	case item.PlaceMouseDownAndUp:
		if !g.pressed {
			return
		}
		s.spanEnd(scenePos)
	case item.PlaceTwoClick:
		if g.clicks == 0 {
			s.spanStart(scenePos)
			g.clicks = 1
			return
		}
		s.spanEnd(scenePos)
	default:
		g.preview.SetPos(s.RoundPointToGrid(scenePos))
	}
	s.commitPreview(scenePos)
}

// commitPreview inserts the preview as one add command, linked to the
// points it lands on, and starts over with a fresh copy of the template.
func (s *Scene) commitPreview(scenePos geom.Point) {
	g := &s.gesture
	placed := g.preview
	cmd, err := s.addItems([]*item.Item{placed}, len(s.items), true, "Add "+placed.UniqueKey())
	if err != nil {
		return
	}
	s.history.Push(cmd, true)
	s.SetSelection([]*item.Item{placed})

	g.preview = g.template.Copy()
	g.preview.SetPos(s.RoundPointToGrid(scenePos))
	g.pressed = false
	g.clicks = 0
}
