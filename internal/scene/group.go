package scene

import (
	"github.com/inamate/diagrammer/backend-go/internal/history"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

// Group replaces the selected items with a composite item holding copies
// of them. The group sits at the grid-snapped top-left of the selection
// bounds, in the z-slot of the lowest selected item, and the copies keep
// their scene placement and their links.
func (s *Scene) Group() (*item.Item, error) {
	if err := s.busy("group"); err != nil {
		return nil, err
	}
	sel := s.Selection()
	if len(sel) < 2 {
		return nil, s.reject("group", ErrNothingToGroup)
	}
	group, err := s.factory.New(s.cfg.GroupKey)
	if err != nil {
		return nil, s.reject("group", err)
	}

	bounds, _ := boundsOf(sel)
	origin := s.RoundPointToGrid(bounds.TopLeft())
	slots := make([]int, len(sel))
	for i, it := range sel {
		slots[i] = s.IndexOf(it)
	}

	copies := item.CopyItems(sel)
	pointMap := mapPoints(sel, copies)
	for _, c := range copies {
		c.SetPos(c.Pos().Sub(origin))
		group.AddChild(c)
	}
	group.SetPos(origin)

	cmd := &structureCommand{kind: history.KindGroup, title: "Group"}
	if err := s.replace(cmd, sel, []*item.Item{group}, slots[:1], pointMap); err != nil {
		return nil, err
	}
	s.groupSlots[group] = slots
	s.history.Push(cmd, true)
	s.SetSelection([]*item.Item{group})
	return group, nil
}

// Ungroup replaces each selected composite item with copies of its
// children, placed where they appeared in the scene. Children of a group
// made by Group go back to the z-slots they had before grouping while the
// group still sits in the lowest of them; otherwise they are stacked in the
// group's z-slot.
func (s *Scene) Ungroup() ([]*item.Item, error) {
	if err := s.busy("ungroup"); err != nil {
		return nil, err
	}
	var groups []*item.Item
	for _, it := range s.Selection() {
		if it.NumChildren() > 0 {
			groups = append(groups, it)
		}
	}
	if len(groups) == 0 {
		return nil, s.reject("ungroup", ErrNothingToUngroup)
	}

	cmd := &structureCommand{kind: history.KindUngroup, title: "Ungroup"}
	var released []*item.Item
	for _, g := range groups {
		children := g.Children()
		copies := item.CopyItems(children)
		pointMap := mapPoints(children, copies)
		for i, c := range copies {
			orig := children[i]
			angle := g.RotationAngle() + orig.RotationAngle()
			if g.IsFlipped() {
				angle = g.RotationAngle() - orig.RotationAngle()
			}
			c.SetFlipped(g.IsFlipped() != orig.IsFlipped())
			c.SetRotationAngle(angle)
			c.SetPos(g.MapToParent(orig.Pos()))
		}
		if err := s.replace(cmd, []*item.Item{g}, copies, s.ungroupSlots(g), pointMap); err != nil {
			s.log.Error("failed to ungroup", "error", err)
			cmd.Undo()
			return nil, err
		}
		released = append(released, copies...)
	}
	s.history.Push(cmd, true)
	s.SetSelection(released)
	return released, nil
}

func (s *Scene) ungroupSlots(g *item.Item) []int {
	index, n := s.IndexOf(g), g.NumChildren()
	slots, ok := s.groupSlots[g]
	if !ok || len(slots) != n || slots[0] != index {
		return contiguous(index, n)
	}
	// g is removed before its children go in.
	rest := len(s.items) - 1
	for i, slot := range slots {
		if slot > rest+i || (i > 0 && slot <= slots[i-1]) {
			return contiguous(index, n)
		}
	}
	return slots
}

// replace removes olds and inserts news at indices as children of cmd. Links
// from olds to surviving items are carried over to the matching points of
// news through pointMap.
func (s *Scene) replace(cmd *structureCommand, olds, news []*item.Item, indices []int, pointMap map[*item.Point]*item.Point) error {
	external := make(map[*item.Point][]*item.Point)
	removing := make(map[*item.Item]bool, len(olds))
	for _, it := range olds {
		removing[it] = true
	}
	for _, it := range olds {
		for _, pt := range it.AllPoints() {
			for _, t := range pt.Targets() {
				if !removing[t.Item().TopLevel()] {
					external[pt] = append(external[pt], t)
				}
			}
		}
	}

	rm, err := s.removeItems(olds, cmd.title)
	if err != nil {
		return err
	}
	add, err := s.addItemsAt(news, indices, false, cmd.title)
	if err != nil {
		rm.Undo()
		return err
	}
	cmd.AddChild(rm)
	for _, it := range olds {
		for _, pt := range it.AllPoints() {
			np, ok := pointMap[pt]
			if !ok {
				continue
			}
			for _, t := range external[pt] {
				s.connect(np, t, &add.Compound)
			}
		}
	}
	cmd.AddChild(add)
	return nil
}

// mapPoints pairs the points of originals with those of their copies. Both
// trees are walked in the same order.
func mapPoints(originals, copies []*item.Item) map[*item.Point]*item.Point {
	m := make(map[*item.Point]*item.Point)
	for i, orig := range originals {
		op, cp := orig.AllPoints(), copies[i].AllPoints()
		for j := range op {
			if j < len(cp) {
				m[op[j]] = cp[j]
			}
		}
	}
	return m
}
