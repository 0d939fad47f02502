package scene

import "errors"

var (
	ErrNilItem           = errors.New("item is nil")
	ErrAlreadyOwned      = errors.New("item already belongs to a scene or parent")
	ErrNotInScene        = errors.New("item is not in this scene")
	ErrInvalidIndex      = errors.New("index out of range")
	ErrNothingSelected   = errors.New("nothing selected")
	ErrNotMovable        = errors.New("item is not movable")
	ErrNotResizable      = errors.New("item is not resizable")
	ErrNotRotatable      = errors.New("item is not rotatable")
	ErrNotFlippable      = errors.New("item is not flippable")
	ErrCannotInsertPoint = errors.New("item does not accept a point there")
	ErrCannotRemovePoint = errors.New("point cannot be removed")
	ErrNothingToGroup    = errors.New("group needs at least two items")
	ErrNothingToUngroup  = errors.New("no group selected")
	ErrGestureActive     = errors.New("a gesture is in progress")
)
