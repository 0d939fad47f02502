package history

// Stack is a bounded undo history. The command below index is the most
// recently applied one; commands at or above index form the redo tail.
type Stack struct {
	commands []Command
	index    int
	clean    int
	open     bool
	depth    int
	onChange func()
}

// NewStack creates a history keeping at most depth commands. A non-positive
// depth keeps everything.
func NewStack(depth int) *Stack {
	return &Stack{depth: depth}
}

// SetOnChange registers a callback run after every state change.
func (s *Stack) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *Stack) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Push records an already-applied command. While the top command is open
// (pushed with final=false) a command of the same kind is offered to it for
// merging. It returns true if cmd was merged rather than appended.
func (s *Stack) Push(cmd Command, final bool) bool {
	if cmd == nil {
		return false
	}
	defer s.changed()

	if top := s.top(); top != nil && s.open && s.index == len(s.commands) &&
		top.Kind() == cmd.Kind() && top.MergeWith(cmd) {
		if s.clean == s.index {
			s.clean = -1
		}
		s.open = !final
		return true
	}

	if s.clean > s.index {
		s.clean = -1
	}
	s.commands = append(s.commands[:s.index], cmd)
	s.index++
	if s.depth > 0 && len(s.commands) > s.depth {
		drop := len(s.commands) - s.depth
		s.commands = append([]Command(nil), s.commands[drop:]...)
		s.index -= drop
		if s.clean >= 0 {
			s.clean -= drop
		}
	}
	s.open = !final
	return false
}

// Seal closes the top command to further merging.
func (s *Stack) Seal() {
	s.open = false
}

// IsOpen reports whether the top command still accepts merges.
func (s *Stack) IsOpen() bool {
	return s.open
}

func (s *Stack) top() Command {
	if s.index == 0 {
		return nil
	}
	return s.commands[s.index-1]
}

// Undo reverts the most recent command.
func (s *Stack) Undo() bool {
	if s.index == 0 {
		return false
	}
	s.open = false
	s.index--
	s.commands[s.index].Undo()
	s.changed()
	return true
}

// Redo re-applies the next command of the redo tail.
func (s *Stack) Redo() bool {
	if s.index >= len(s.commands) {
		return false
	}
	s.open = false
	s.commands[s.index].Redo()
	s.index++
	s.changed()
	return true
}

// Rollback reverts and discards the open top command, if any.
func (s *Stack) Rollback() bool {
	if !s.open || s.index == 0 {
		return false
	}
	s.open = false
	s.index--
	s.commands[s.index].Undo()
	s.commands = s.commands[:s.index]
	if s.clean > s.index {
		s.clean = -1
	}
	s.changed()
	return true
}

func (s *Stack) CanUndo() bool { return s.index > 0 }
func (s *Stack) CanRedo() bool { return s.index < len(s.commands) }
func (s *Stack) Count() int    { return len(s.commands) }
func (s *Stack) Index() int    { return s.index }

// UndoTitle returns the title of the command Undo would revert.
func (s *Stack) UndoTitle() string {
	if top := s.top(); top != nil {
		return top.Title()
	}
	return ""
}

// RedoTitle returns the title of the command Redo would apply.
func (s *Stack) RedoTitle() string {
	if s.index < len(s.commands) {
		return s.commands[s.index].Title()
	}
	return ""
}

// SetClean marks the current state as saved.
func (s *Stack) SetClean() {
	s.clean = s.index
	s.changed()
}

// IsClean reports whether the current state is the saved one.
func (s *Stack) IsClean() bool {
	return s.clean == s.index
}

// Clear drops every command. The empty state counts as clean.
func (s *Stack) Clear() {
	s.commands = nil
	s.index = 0
	s.clean = 0
	s.open = false
	s.changed()
}
