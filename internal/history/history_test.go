package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setCommand moves *target from before to after.
type setCommand struct {
	Compound
	kind          Kind
	target        *int
	before, after int
}

func set(target *int, kind Kind, v int) *setCommand {
	c := &setCommand{kind: kind, target: target, before: *target, after: v}
	*target = v
	return c
}

func (c *setCommand) Kind() Kind    { return c.kind }
func (c *setCommand) Title() string { return c.kind.String() }

func (c *setCommand) Redo() {
	*c.target = c.after
	c.RedoChildren()
}

func (c *setCommand) Undo() {
	c.UndoChildren()
	*c.target = c.before
}

func (c *setCommand) MergeWith(other Command) bool {
	o, ok := other.(*setCommand)
	if !ok || o.target != c.target {
		return false
	}
	c.after = o.after
	c.MergeChildren(&o.Compound)
	return true
}

func TestPushUndoRedo(t *testing.T) {
	v := 0
	s := NewStack(0)
	s.Push(set(&v, KindMove, 1), true)
	s.Push(set(&v, KindMove, 2), true)
	assert.Equal(t, 2, s.Count())

	require.True(t, s.Undo())
	assert.Equal(t, 1, v)
	require.True(t, s.Undo())
	assert.Equal(t, 0, v)
	assert.False(t, s.Undo())

	require.True(t, s.Redo())
	assert.Equal(t, 1, v)
	assert.Equal(t, "move", s.RedoTitle())
}

func TestOpenCommandMerges(t *testing.T) {
	v := 0
	s := NewStack(0)
	for i := 1; i <= 5; i++ {
		s.Push(set(&v, KindResize, i), i == 5)
	}
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.IsOpen())

	s.Undo()
	assert.Equal(t, 0, v)
	s.Redo()
	assert.Equal(t, 5, v)
}

func TestFinalCommandDoesNotMerge(t *testing.T) {
	v := 0
	s := NewStack(0)
	s.Push(set(&v, KindMove, 1), true)
	s.Push(set(&v, KindMove, 2), true)
	assert.Equal(t, 2, s.Count())
}

func TestDifferentKindsOrTargetsDoNotMerge(t *testing.T) {
	a, b := 0, 0
	s := NewStack(0)
	s.Push(set(&a, KindMove, 1), false)
	s.Push(set(&a, KindResize, 2), false)
	s.Push(set(&b, KindResize, 3), false)
	assert.Equal(t, 3, s.Count())
}

func TestPushClearsRedoTail(t *testing.T) {
	v := 0
	s := NewStack(0)
	s.Push(set(&v, KindMove, 1), true)
	s.Push(set(&v, KindMove, 2), true)
	s.Undo()
	s.Push(set(&v, KindMove, 7), true)
	assert.False(t, s.CanRedo())
	assert.Equal(t, 2, s.Count())
	s.Undo()
	assert.Equal(t, 1, v)
}

func TestDepthEvictsOldest(t *testing.T) {
	v := 0
	s := NewStack(3)
	for i := 1; i <= 5; i++ {
		s.Push(set(&v, KindMove, i), true)
	}
	assert.Equal(t, 3, s.Count())
	for s.Undo() {
	}
	assert.Equal(t, 2, v)
}

func TestCleanState(t *testing.T) {
	v := 0
	s := NewStack(0)
	assert.True(t, s.IsClean())
	s.Push(set(&v, KindMove, 1), false)
	assert.False(t, s.IsClean())
	s.SetClean()
	assert.True(t, s.IsClean())

	s.Push(set(&v, KindMove, 2), true)
	assert.False(t, s.IsClean(), "merge into the clean command")

	s.Undo()
	assert.False(t, s.IsClean())
}

func TestRollback(t *testing.T) {
	v := 0
	s := NewStack(0)
	s.Push(set(&v, KindMove, 1), true)
	s.Push(set(&v, KindResize, 4), false)
	require.True(t, s.Rollback())
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.Rollback())
}

func TestMergeChildren(t *testing.T) {
	v, w := 0, 0
	parent := set(&v, KindMove, 1)
	parent.AddChild(set(&w, KindResize, 10))
	parent.AddChild(set(&w, KindConnect, 11))

	next := set(&v, KindMove, 2)
	next.AddChild(set(&w, KindResize, 20))
	next.AddChild(set(&w, KindConnect, 21))

	require.True(t, parent.MergeWith(next))
	kids := parent.Children()
	require.Len(t, kids, 3)
	assert.Equal(t, 20, kids[0].(*setCommand).after)
	assert.Equal(t, KindConnect, kids[2].Kind())

	parent.Undo()
	assert.Equal(t, 0, v)
	assert.Equal(t, 0, w)
}

func TestOnChange(t *testing.T) {
	v, calls := 0, 0
	s := NewStack(0)
	s.SetOnChange(func() { calls++ })
	s.Push(set(&v, KindMove, 1), true)
	s.Undo()
	s.Redo()
	assert.Equal(t, 3, calls)
}
