package collab

import (
	"errors"
	"fmt"

	"github.com/inamate/diagrammer/backend-go/internal/engine"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrGestureBusy      = errors.New("another user is editing")
)

// isGesture reports whether op drives the shared gesture state machine.
func isGesture(opType string) bool {
	switch opType {
	case OpMouseDown, OpMouseMove, OpMouseUp, OpCancel, OpPlace:
		return true
	}
	return false
}

// applyOperation runs op against the drawing's engine and returns the IDs it
// created, if any.
func applyOperation(e *engine.Engine, op Operation) ([]string, error) {
	switch op.Type {
	case OpMouseDown:
		e.MouseDown(op.X, op.Y, op.Button, op.Shift)
	case OpMouseMove:
		e.MouseMove(op.X, op.Y, op.Shift)
	case OpMouseUp:
		e.MouseUp(op.X, op.Y, op.Button, op.Shift)
	case OpCancel:
		e.Cancel()
	case OpPlace:
		return nil, e.SetNewItem(op.ItemType)

	case OpSelectionSet:
		e.SetSelection(op.IDs)
	case OpSelectAll:
		e.SelectAll()
	case OpSelectNone:
		e.ClearSelection()
	case OpMove:
		_, err := e.MoveSelection(op.DX, op.DY)
		return nil, err
	case OpDelete:
		return nil, e.DeleteSelection()
	case OpRotate:
		return nil, e.Rotate()
	case OpRotateBack:
		return nil, e.RotateBack()
	case OpFlip:
		return nil, e.Flip()
	case OpGroup:
		return nil, e.Group()
	case OpUngroup:
		return nil, e.Ungroup()

	case OpBringToFront:
		return nil, e.BringToFront()
	case OpSendToBack:
		return nil, e.SendToBack()
	case OpBringForward:
		return nil, e.BringForward()
	case OpSendBackward:
		return nil, e.SendBackward()

	case OpResizePoint:
		return nil, e.ResizePoint(op.PointID, op.X, op.Y)
	case OpInsertPoint:
		id, err := e.InsertPoint(op.ItemID, op.X, op.Y)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	case OpRemovePoint:
		return nil, e.RemovePoint(op.PointID)

	case OpCut:
		return nil, e.Cut()
	case OpCopy:
		return nil, e.Copy()
	case OpPaste:
		return e.Paste()

	case OpUndo:
		if !e.Undo() {
			return nil, errors.New("nothing to undo")
		}
	case OpRedo:
		if !e.Redo() {
			return nil, errors.New("nothing to redo")
		}

	case OpLoadDocument:
		return nil, e.LoadDocument(string(op.Document))
	case OpSampleDocument:
		return nil, e.LoadSampleDocument()

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
	return nil, nil
}
