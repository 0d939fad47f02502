//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(scene.DefaultConfig())

	// Create the engine API object
	api := js.Global().Get("Object").New()

	// --- Documents ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("markSaved", js.FuncOf(markSaved))

	// --- Gestures (frontend → backend) ---
	api.Set("mouseDown", js.FuncOf(mouseDown))
	api.Set("mouseMove", js.FuncOf(mouseMove))
	api.Set("mouseUp", js.FuncOf(mouseUp))
	api.Set("cancel", js.FuncOf(cancel))
	api.Set("setNewItem", js.FuncOf(setNewItem))

	// --- Commands ---
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("selectAll", js.FuncOf(simple(eng.SelectAll)))
	api.Set("clearSelection", js.FuncOf(simple(eng.ClearSelection)))
	api.Set("moveSelection", js.FuncOf(moveSelection))
	api.Set("deleteSelection", js.FuncOf(command(eng.DeleteSelection)))
	api.Set("rotate", js.FuncOf(command(eng.Rotate)))
	api.Set("rotateBack", js.FuncOf(command(eng.RotateBack)))
	api.Set("flip", js.FuncOf(command(eng.Flip)))
	api.Set("group", js.FuncOf(command(eng.Group)))
	api.Set("ungroup", js.FuncOf(command(eng.Ungroup)))
	api.Set("bringToFront", js.FuncOf(command(eng.BringToFront)))
	api.Set("sendToBack", js.FuncOf(command(eng.SendToBack)))
	api.Set("bringForward", js.FuncOf(command(eng.BringForward)))
	api.Set("sendBackward", js.FuncOf(command(eng.SendBackward)))
	api.Set("insertPoint", js.FuncOf(insertPoint))
	api.Set("removePoint", js.FuncOf(removePoint))
	api.Set("cut", js.FuncOf(command(eng.Cut)))
	api.Set("copy", js.FuncOf(command(eng.Copy)))
	api.Set("paste", js.FuncOf(paste))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getHistoryState", js.FuncOf(getHistoryState))
	api.Set("getGestureState", js.FuncOf(getGestureState))

	// Register on global scope
	js.Global().Set("diagramEngine", api)

	// Signal that WASM is ready
	js.Global().Set("diagramWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func missing(what string) any {
	return js.ValueOf(map[string]any{"error": "missing " + what})
}

func simple(fn func()) func(js.Value, []js.Value) any {
	return func(js.Value, []js.Value) any {
		fn()
		return okResult()
	}
}

func command(fn func() error) func(js.Value, []js.Value) any {
	return func(js.Value, []js.Value) any {
		if err := fn(); err != nil {
			return errorResult(err)
		}
		return okResult()
	}
}

// --- Document Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("document JSON")
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	if err := eng.LoadSampleDocument(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func getDocument(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetDocument())
}

func markSaved(this js.Value, args []js.Value) any {
	eng.MarkSaved()
	return okResult()
}

// --- Gesture Handlers ---

// mouseDown(x, y, button, shift)
func mouseDown(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return missing("x, y, button, shift")
	}
	eng.MouseDown(args[0].Float(), args[1].Float(), args[2].Int(), args[3].Bool())
	return okResult()
}

// mouseMove(x, y, shift)
func mouseMove(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("x, y, shift")
	}
	eng.MouseMove(args[0].Float(), args[1].Float(), args[2].Bool())
	return okResult()
}

// mouseUp(x, y, button, shift)
func mouseUp(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return missing("x, y, button, shift")
	}
	eng.MouseUp(args[0].Float(), args[1].Float(), args[2].Int(), args[3].Bool())
	return okResult()
}

func cancel(this js.Value, args []js.Value) any {
	eng.Cancel()
	return okResult()
}

func setNewItem(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("item type")
	}
	if err := eng.SetNewItem(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// --- Command Handlers ---

// setSelection(ids: string[])
func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("ids")
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return okResult()
}

// moveSelection(dx, dy)
func moveSelection(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("dx, dy")
	}
	applied, err := eng.MoveSelection(args[0].Float(), args[1].Float())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "dx": applied.X, "dy": applied.Y})
}

// insertPoint(itemId, x, y)
func insertPoint(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("itemId, x, y")
	}
	id, err := eng.InsertPoint(args[0].String(), args[1].Float(), args[2].Float())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "pointId": id})
}

func removePoint(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("pointId")
	}
	if err := eng.RemovePoint(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func paste(this js.Value, args []js.Value) any {
	ids, err := eng.Paste()
	if err != nil {
		return errorResult(err)
	}
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(map[string]any{"ok": true, "ids": out})
}

func undo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Redo())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

// hitTest(x, y) returns the item ID or "".
func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelection())
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getHistoryState(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetHistoryState())
}

func getGestureState(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GestureState())
}
