// Package history implements reversible, mergeable commands and the bounded
// undo stack that holds them.
package history

// Kind tags a command so the stack only merges like with like.
type Kind int

const (
	KindAdd Kind = iota
	KindRemove
	KindMove
	KindRotate
	KindRotateBack
	KindFlip
	KindResize
	KindReorder
	KindInsertPoint
	KindRemovePoint
	KindConnect
	KindDisconnect
	KindGroup
	KindUngroup
)

var kindNames = [...]string{
	KindAdd:         "add",
	KindRemove:      "remove",
	KindMove:        "move",
	KindRotate:      "rotate",
	KindRotateBack:  "rotate back",
	KindFlip:        "flip",
	KindResize:      "resize",
	KindReorder:     "reorder",
	KindInsertPoint: "insert point",
	KindRemovePoint: "remove point",
	KindConnect:     "connect",
	KindDisconnect:  "disconnect",
	KindGroup:       "group",
	KindUngroup:     "ungroup",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Command is a reversible unit of change. Commands are applied before they
// are pushed; Undo and Redo replay captured state.
type Command interface {
	Kind() Kind
	Title() string
	Redo()
	Undo()
	// MergeWith folds other, a command of the same kind pushed later, into
	// this one. It returns false if the two target different things.
	MergeWith(other Command) bool
}

// Compound holds the ordered side-effect commands of a primary action.
type Compound struct {
	children []Command
}

// AddChild appends a child command.
func (c *Compound) AddChild(cmd Command) {
	if cmd != nil {
		c.children = append(c.children, cmd)
	}
}

// Children returns the child commands in order.
func (c *Compound) Children() []Command {
	return c.children
}

// HasChildren reports whether any side effects were recorded.
func (c *Compound) HasChildren() bool {
	return len(c.children) > 0
}

// RedoChildren replays children in order.
func (c *Compound) RedoChildren() {
	for _, child := range c.children {
		child.Redo()
	}
}

// UndoChildren reverts children in reverse order.
func (c *Compound) UndoChildren() {
	for i := len(c.children) - 1; i >= 0; i-- {
		c.children[i].Undo()
	}
}

// MergeChildren offers each child of other to the existing children of the
// same kind; children nobody absorbs are appended. Link changes are always
// appended so their order is preserved.
func (c *Compound) MergeChildren(other *Compound) {
	for _, child := range other.children {
		if !c.mergeChild(child) {
			c.children = append(c.children, child)
		}
	}
}

func (c *Compound) mergeChild(child Command) bool {
	if child.Kind() == KindConnect || child.Kind() == KindDisconnect {
		return false
	}
	for _, existing := range c.children {
		if existing.Kind() == child.Kind() && existing.MergeWith(child) {
			return true
		}
	}
	return false
}
