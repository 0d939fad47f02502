package scene

import (
	"github.com/inamate/diagrammer/backend-go/internal/history"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

func (s *Scene) connect(a, b *item.Point, parent *history.Compound) bool {
	if !a.AddTarget(b) {
		return false
	}
	parent.AddChild(&linkCommand{kind: history.KindConnect, a: a, b: b})
	return true
}

func (s *Scene) disconnect(a, b *item.Point, parent *history.Compound) bool {
	if !a.RemoveTarget(b) {
		return false
	}
	parent.AddChild(&linkCommand{kind: history.KindDisconnect, a: a, b: b})
	return true
}

// connectCoincident links pt to every eligible point of another item that
// sits on it, scanning items in z-order and points in list order.
func (s *Scene) connectCoincident(pt *item.Point, mode item.PlaceMode, parent *history.Compound) {
	if !pt.IsConnection() || !s.Owns(pt.Item()) {
		return
	}
	for _, top := range s.items {
		for _, other := range top.AllPoints() {
			if !pt.IsTarget(other) && pt.ShouldConnect(other, mode) {
				s.connect(pt, other, parent)
			}
		}
	}
}

// severDiverged drops every link of pt whose far end no longer coincides.
func (s *Scene) severDiverged(pt *item.Point, parent *history.Compound) {
	for _, t := range pt.Targets() {
		if pt.ShouldDisconnect(t) {
			s.disconnect(pt, t, parent)
		}
	}
}

// linkWalk is one connection maintenance pass. Items in fixed were changed
// by the user and are never adjusted; every other linked item follows
// through its linked control points, each of which is dragged at most once
// per pass so cycles end.
type linkWalk struct {
	s       *Scene
	parent  *history.Compound
	fixed   map[*item.Item]bool
	dragged map[*item.Point]bool
	touched []*item.Item
	seen    map[*item.Item]bool
}

func (s *Scene) newLinkWalk(parent *history.Compound, fixed []*item.Item) *linkWalk {
	w := &linkWalk{
		s:       s,
		parent:  parent,
		fixed:   make(map[*item.Item]bool),
		dragged: make(map[*item.Point]bool),
		seen:    make(map[*item.Item]bool),
	}
	for _, it := range fixed {
		it.Walk(func(c *item.Item) bool {
			w.fixed[c] = true
			return true
		})
	}
	return w
}

// maintainConnections restores coherence of the links of items after their
// geometry changed. Traversal is depth-first in point-list order: for each
// non-free connection point, each linked point that diverged is dragged
// along if its item is resizable and not fixed, and the change is
// propagated from that item before moving on. Links that still diverge
// once propagation is done are severed; under the strict policy a severed
// point then links to any point that now coincides with it. exclude is
// left alone.
func (s *Scene) maintainConnections(items []*item.Item, exclude *item.Point, parent *history.Compound) {
	w := s.newLinkWalk(parent, items)
	for _, it := range items {
		w.follow(it, exclude)
	}
	w.settle(exclude)
}

func (w *linkWalk) touch(it *item.Item) {
	if !w.seen[it] {
		w.seen[it] = true
		w.touched = append(w.touched, it)
	}
}

func (w *linkWalk) follow(it *item.Item, exclude *item.Point) {
	w.touch(it)
	for _, pt := range it.AllPoints() {
		if pt == exclude || !pt.IsConnection() || pt.IsFree() {
			continue
		}
		for _, t := range pt.Targets() {
			if !pt.ShouldDisconnect(t) || w.dragged[t] || !t.IsControl() {
				continue
			}
			other := t.Item()
			if other == nil || w.fixed[other] || !w.s.Owns(other) || !other.Flags().Has(item.Resizable) {
				continue
			}
			w.dragged[t] = true
			before := other.Geometry()
			if other.ResizeItem(t, pt.ScenePos()) {
				w.parent.AddChild(&resizeCommand{it: other, before: before, after: other.Geometry()})
				w.follow(other, t)
			}
		}
	}
}

func (w *linkWalk) settle(exclude *item.Point) {
	for _, it := range w.touched {
		for _, pt := range it.AllPoints() {
			if pt == exclude || !pt.IsConnection() || pt.IsFree() {
				continue
			}
			for _, t := range pt.Targets() {
				if pt.IsTarget(t) && pt.ShouldDisconnect(t) {
					w.s.disconnect(pt, t, w.parent)
					if w.s.cfg.PlacePolicy == item.PlaceStrict {
						w.s.connectCoincident(pt, item.PlaceCommit, w.parent)
					}
				}
			}
		}
	}
}
