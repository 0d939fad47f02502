// Package scene owns a drawing's items: z-order, selection, hit-testing,
// the undo history, connection maintenance and the interactive gestures
// that create and edit items.
package scene

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/history"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
)

// Listener receives change notifications. Nil callbacks are skipped.
type Listener struct {
	SelectionChanged func()
	ItemCountChanged func(count int)
	HistoryChanged   func()
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used for rejected operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scene) { s.log = l }
}

// WithListener registers change callbacks.
func WithListener(l Listener) Option {
	return func(s *Scene) { s.listener = l }
}

// Scene is the single owner and writer of a drawing's items. It is not safe
// for concurrent use.
type Scene struct {
	cfg      Config
	factory  *item.Factory
	log      *slog.Logger
	listener Listener

	items   []*item.Item
	history *history.Stack
	gesture gesture

	// groupSlots holds the z-indices the children of a group had before
	// Group packed them together.
	groupSlots map[*item.Item][]int
}

// New creates an empty scene. The factory provides the composite item used
// by Group.
func New(cfg Config, factory *item.Factory, opts ...Option) *Scene {
	s := &Scene{
		cfg:     cfg,
		factory: factory,
		log:     slog.Default(),
		history: history.NewStack(cfg.HistoryDepth),

		groupSlots: make(map[*item.Item][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history.SetOnChange(func() {
		if s.listener.HistoryChanged != nil {
			s.listener.HistoryChanged()
		}
	})
	return s
}

func (s *Scene) Config() Config          { return s.cfg }
func (s *Scene) Factory() *item.Factory  { return s.factory }
func (s *Scene) History() *history.Stack { return s.history }

// SetConfig replaces the settings. The history depth is fixed at
// construction and is not changed.
func (s *Scene) SetConfig(cfg Config) {
	cfg.HistoryDepth = s.cfg.HistoryDepth
	s.cfg = cfg
}

func (s *Scene) reject(op string, err error) error {
	s.log.Debug("reject "+op, "error", err)
	return err
}

func (s *Scene) selectionChanged() {
	if s.listener.SelectionChanged != nil {
		s.listener.SelectionChanged()
	}
}

func (s *Scene) countChanged() {
	if s.listener.ItemCountChanged != nil {
		s.listener.ItemCountChanged(len(s.items))
	}
}

// RoundToGrid snaps v to the configured grid.
func (s *Scene) RoundToGrid(v float64) float64 {
	return geom.RoundToGrid(v, s.cfg.Grid)
}

// RoundPointToGrid snaps both coordinates of p.
func (s *Scene) RoundPointToGrid(p geom.Point) geom.Point {
	return geom.RoundPointToGrid(p, s.cfg.Grid)
}

// ---- Storage ----

// Items returns the top-level items in z-order, bottom first.
func (s *Scene) Items() []*item.Item { return slices.Clone(s.items) }
func (s *Scene) ItemCount() int      { return len(s.items) }

// IndexOf returns the z-index of a top-level item, or -1.
func (s *Scene) IndexOf(it *item.Item) int {
	return slices.Index(s.items, it)
}

// Owns reports whether it, or the top-level item it belongs to, is in the
// scene.
func (s *Scene) Owns(it *item.Item) bool {
	return it != nil && it.TopLevel().Owner() == s
}

// ItemByID finds an item, at any depth, by its identifier.
func (s *Scene) ItemByID(id string) *item.Item {
	var found *item.Item
	for _, top := range s.items {
		top.Walk(func(it *item.Item) bool {
			if it.ID() == id {
				found = it
			}
			return found == nil
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// PointByID finds a point of any item by its identifier.
func (s *Scene) PointByID(id string) *item.Point {
	for _, top := range s.items {
		for _, pt := range top.AllPoints() {
			if pt.ID() == id {
				return pt
			}
		}
	}
	return nil
}

func (s *Scene) insertRaw(i int, it *item.Item) {
	i = max(0, min(i, len(s.items)))
	it.SetOwner(s)
	s.items = slices.Insert(s.items, i, it)
	s.countChanged()
}

func (s *Scene) removeRaw(it *item.Item) int {
	i := s.IndexOf(it)
	if i < 0 {
		return -1
	}
	s.items = slices.Delete(s.items, i, i+1)
	it.SetOwner(nil)
	if it.IsSelected() {
		it.SetSelected(false)
		s.selectionChanged()
	}
	s.countChanged()
	return i
}

// Load replaces the scene's contents without recording history. Positions
// are taken as given.
func (s *Scene) Load(items []*item.Item) error {
	for _, it := range items {
		if it == nil {
			return ErrNilItem
		}
		if it.Parent() != nil || (it.Owner() != nil && it.Owner() != s) {
			return ErrAlreadyOwned
		}
	}
	s.Cancel()
	for _, it := range s.items {
		it.SetOwner(nil)
		it.SetSelected(false)
	}
	s.items = nil
	clear(s.groupSlots)
	for _, it := range items {
		it.SetOwner(s)
		it.SetSelected(false)
		s.items = append(s.items, it)
	}
	s.history.Clear()
	s.countChanged()
	s.selectionChanged()
	return nil
}

// AddItem appends it on top of the z-order.
func (s *Scene) AddItem(it *item.Item) error {
	return s.InsertItem(len(s.items), it)
}

// InsertItem inserts it at z-index i.
func (s *Scene) InsertItem(i int, it *item.Item) error {
	if err := s.busy("insert item"); err != nil {
		return err
	}
	if i < 0 || i > len(s.items) {
		return s.reject("insert item", ErrInvalidIndex)
	}
	cmd, err := s.addItems([]*item.Item{it}, i, false, "Add")
	if err != nil {
		return err
	}
	s.history.Push(cmd, true)
	return nil
}

// AddItems appends items in order as one command.
func (s *Scene) AddItems(items []*item.Item) error {
	if err := s.busy("add items"); err != nil {
		return err
	}
	cmd, err := s.addItems(items, len(s.items), false, "Add")
	if err != nil {
		return err
	}
	s.history.Push(cmd, true)
	return nil
}

// addItems inserts items starting at index, drops links to points outside
// the scene and, when connect is set, links coincident points.
func (s *Scene) addItems(items []*item.Item, index int, connect bool, title string) (*addCommand, error) {
	return s.addItemsAt(items, contiguous(index, len(items)), connect, title)
}

func contiguous(index, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = index + i
	}
	return out
}

// addItemsAt inserts items[i] at indices[i], in order. indices must be
// ascending.
func (s *Scene) addItemsAt(items []*item.Item, indices []int, connect bool, title string) (*addCommand, error) {
	if len(items) == 0 || len(indices) != len(items) {
		return nil, s.reject("add items", ErrNilItem)
	}
	for _, it := range items {
		if it == nil {
			return nil, s.reject("add items", ErrNilItem)
		}
		if it.Owner() != nil || it.Parent() != nil {
			return nil, s.reject("add items", ErrAlreadyOwned)
		}
	}

	cmd := &addCommand{s: s, title: title}
	for i, it := range items {
		cmd.items = append(cmd.items, it)
		cmd.indices = append(cmd.indices, indices[i])
		s.insertRaw(indices[i], it)
	}
	for _, it := range items {
		for _, pt := range it.AllPoints() {
			for _, t := range pt.Targets() {
				if !s.Owns(t.Item()) {
					s.disconnect(pt, t, &cmd.Compound)
				}
			}
		}
	}
	if connect {
		for _, it := range items {
			for _, pt := range it.AllPoints() {
				s.connectCoincident(pt, item.PlaceCommit, &cmd.Compound)
			}
		}
	}
	return cmd, nil
}

// RemoveItems takes top-level items out of the scene as one command.
func (s *Scene) RemoveItems(items []*item.Item) error {
	if err := s.busy("remove items"); err != nil {
		return err
	}
	cmd, err := s.removeItems(items, "Remove")
	if err != nil {
		return err
	}
	s.history.Push(cmd, true)
	return nil
}

// RemoveItem removes a single top-level item.
func (s *Scene) RemoveItem(it *item.Item) error {
	return s.RemoveItems([]*item.Item{it})
}

// RemoveSelection deletes the selected items.
func (s *Scene) RemoveSelection() error {
	sel := s.Selection()
	if len(sel) == 0 {
		return s.reject("remove selection", ErrNothingSelected)
	}
	return s.RemoveItems(sel)
}

func (s *Scene) removeItems(items []*item.Item, title string) (*removeCommand, error) {
	if len(items) == 0 {
		return nil, s.reject("remove items", ErrNothingSelected)
	}
	removing := make(map[*item.Item]bool, len(items))
	for _, it := range items {
		if it == nil {
			return nil, s.reject("remove items", ErrNilItem)
		}
		if it.Owner() != s {
			return nil, s.reject("remove items", ErrNotInScene)
		}
		removing[it] = true
	}

	cmd := &removeCommand{s: s, title: title}
	for i, it := range s.items {
		if removing[it] {
			cmd.items = append(cmd.items, it)
			cmd.indices = append(cmd.indices, i)
		}
	}
	for _, it := range cmd.items {
		for _, pt := range it.AllPoints() {
			for _, t := range pt.Targets() {
				if !removing[t.Item().TopLevel()] {
					s.disconnect(pt, t, &cmd.Compound)
				}
			}
		}
	}
	for _, it := range cmd.items {
		s.removeRaw(it)
	}
	return cmd, nil
}

// ---- Hit-testing ----

// ItemAt returns the topmost top-level item whose shape, or the shape of one
// of its children, contains scenePos.
func (s *Scene) ItemAt(scenePos geom.Point) *item.Item {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Contains(scenePos) {
			return s.items[i]
		}
	}
	return nil
}

// ItemsInRect returns the top-level items picked by r under the configured
// selection mode, in z-order.
func (s *Scene) ItemsInRect(r geom.Rect) []*item.Item {
	var out []*item.Item
	for _, it := range s.items {
		if !it.IsVisible() {
			continue
		}
		b := it.SceneBoundingRect()
		switch s.cfg.Selection {
		case SelectIntersects:
			if r.Intersects(b) {
				out = append(out, it)
			}
		default:
			if r.ContainsRect(b) {
				out = append(out, it)
			}
		}
	}
	return out
}

// PointAt returns the control point of a selected resizable item under
// scenePos, topmost item first.
func (s *Scene) PointAt(scenePos geom.Point) *item.Point {
	for i := len(s.items) - 1; i >= 0; i-- {
		it := s.items[i]
		if !it.IsSelected() || !it.IsVisible() {
			continue
		}
		var hit *item.Point
		it.Walk(func(c *item.Item) bool {
			if !c.Flags().Has(item.Resizable) {
				return true
			}
			for _, pt := range c.Points() {
				if pt.IsControl() && pt.Contains(scenePos) {
					hit = pt
					return false
				}
			}
			return true
		})
		if hit != nil {
			return hit
		}
	}
	return nil
}

// ---- Selection ----

// Selection returns the selected top-level items in z-order.
func (s *Scene) Selection() []*item.Item {
	var out []*item.Item
	for _, it := range s.items {
		if it.IsSelected() {
			out = append(out, it)
		}
	}
	return out
}

// Select adds it to the selection, or replaces the selection unless add
// is set.
func (s *Scene) Select(it *item.Item, add bool) error {
	if it == nil {
		return ErrNilItem
	}
	if it.Owner() != s {
		return ErrNotInScene
	}
	if !add {
		for _, other := range s.items {
			other.SetSelected(false)
		}
	}
	it.SetSelected(true)
	s.selectionChanged()
	return nil
}

// SetSelection replaces the selection with items owned by the scene.
func (s *Scene) SetSelection(items []*item.Item) {
	want := make(map[*item.Item]bool, len(items))
	for _, it := range items {
		want[it] = true
	}
	for _, it := range s.items {
		it.SetSelected(want[it])
	}
	s.selectionChanged()
}

func (s *Scene) SelectAll()      { s.SetSelection(s.items) }
func (s *Scene) ClearSelection() { s.SetSelection(nil) }

// ToggleSelected flips the selection state of a top-level item.
func (s *Scene) ToggleSelected(it *item.Item) {
	if it == nil || it.Owner() != s {
		return
	}
	it.SetSelected(!it.IsSelected())
	s.selectionChanged()
}

// SelectionBounds returns the union of the selected items' scene bounds.
func (s *Scene) SelectionBounds() (geom.Rect, bool) {
	return boundsOf(s.Selection())
}

// SelectionCentroid returns the center of the selection bounds.
func (s *Scene) SelectionCentroid() (geom.Point, bool) {
	r, ok := s.SelectionBounds()
	return r.Center(), ok
}

func boundsOf(items []*item.Item) (geom.Rect, bool) {
	if len(items) == 0 {
		return geom.Rect{}, false
	}
	rects := make([]geom.Rect, len(items))
	for i, it := range items {
		rects[i] = it.SceneBoundingRect()
	}
	return geom.UnionAll(rects), true
}

// ---- History ----

// Undo reverts the last command. It is refused mid-gesture.
func (s *Scene) Undo() bool {
	if s.gesture.dragging() {
		return false
	}
	return s.history.Undo()
}

// Redo re-applies the next command. It is refused mid-gesture.
func (s *Scene) Redo() bool {
	if s.gesture.dragging() {
		return false
	}
	return s.history.Redo()
}

func (s *Scene) CanUndo() bool { return s.history.CanUndo() && !s.gesture.dragging() }
func (s *Scene) CanRedo() bool { return s.history.CanRedo() && !s.gesture.dragging() }
func (s *Scene) IsClean() bool { return s.history.IsClean() }
func (s *Scene) SetClean()     { s.history.SetClean() }

// ---- Rendering ----

// Render paints every item bottom to top, then the placement preview.
func (s *Scene) Render(p render.Painter) {
	for _, it := range s.items {
		it.Render(p)
	}
	if s.gesture.preview != nil {
		s.gesture.preview.Render(p)
	}
}

// ---- Reorder ----

func (s *Scene) BringToFront() error { return s.reorder("Bring to Front", bringToFront) }
func (s *Scene) SendToBack() error   { return s.reorder("Send to Back", sendToBack) }
func (s *Scene) BringForward() error { return s.reorder("Bring Forward", bringForward) }
func (s *Scene) SendBackward() error { return s.reorder("Send Backward", sendBackward) }

func (s *Scene) reorder(title string, fn func([]*item.Item) []*item.Item) error {
	if err := s.busy("reorder"); err != nil {
		return err
	}
	if len(s.Selection()) == 0 {
		return s.reject("reorder", ErrNothingSelected)
	}
	before := slices.Clone(s.items)
	after := fn(slices.Clone(s.items))
	if slices.Equal(before, after) {
		return nil
	}
	s.items = after
	s.history.Push(&reorderCommand{s: s, title: title, before: before, after: slices.Clone(after)}, true)
	return nil
}

func bringToFront(items []*item.Item) []*item.Item {
	var rest, sel []*item.Item
	for _, it := range items {
		if it.IsSelected() {
			sel = append(sel, it)
		} else {
			rest = append(rest, it)
		}
	}
	return append(rest, sel...)
}

func sendToBack(items []*item.Item) []*item.Item {
	var rest, sel []*item.Item
	for _, it := range items {
		if it.IsSelected() {
			sel = append(sel, it)
		} else {
			rest = append(rest, it)
		}
	}
	return append(sel, rest...)
}

func bringForward(items []*item.Item) []*item.Item {
	for i := len(items) - 2; i >= 0; i-- {
		if items[i].IsSelected() && !items[i+1].IsSelected() {
			items[i], items[i+1] = items[i+1], items[i]
		}
	}
	return items
}

func sendBackward(items []*item.Item) []*item.Item {
	for i := 1; i < len(items); i++ {
		if items[i].IsSelected() && !items[i-1].IsSelected() {
			items[i], items[i-1] = items[i-1], items[i]
		}
	}
	return items
}

// String summarizes the scene for logs.
func (s *Scene) String() string {
	return fmt.Sprintf("scene(items=%d selected=%d history=%d/%d)",
		len(s.items), len(s.Selection()), s.history.Index(), s.history.Count())
}
