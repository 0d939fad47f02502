package engine

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(scene.DefaultConfig())
	require.NoError(t, e.LoadSampleDocument())
	return e
}

func TestLoadSampleDocument(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, 8, e.Scene().ItemCount())
	assert.False(t, e.IsDirty())

	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(e.GetDocument()), &doc))
	assert.Equal(t, "Untitled", doc.Name)
	require.NotNil(t, doc.Settings)
	assert.Equal(t, 10.0, doc.Settings.Grid)
	assert.Len(t, doc.Items, 8)
}

func TestLoadDocumentRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	data := e.GetDocument()

	other := NewEngine(scene.DefaultConfig())
	require.NoError(t, other.LoadDocument(data))
	assert.JSONEq(t, data, other.GetDocument())
}

func TestLoadDocumentRejectsMalformed(t *testing.T) {
	e := newTestEngine(t)
	err := e.LoadDocument(`{"version":1,"items":[{"type":"hexagon"}]}`)
	assert.ErrorIs(t, err, item.ErrUnknownType)
	assert.Equal(t, 8, e.Scene().ItemCount())
}

func TestLoadDocumentAppliesSettings(t *testing.T) {
	e := NewEngine(scene.DefaultConfig())
	require.NoError(t, e.LoadDocument(`{"version":1,"settings":{"grid":25,"contentWidth":500,"contentHeight":400},"items":[]}`))
	cfg := e.Scene().Config()
	assert.Equal(t, 25.0, cfg.Grid)
	assert.Equal(t, 500.0, cfg.ContentRect.Width)
	assert.Equal(t, 400.0, cfg.ContentRect.Height)
}

func TestPlaceByTypeKey(t *testing.T) {
	e := NewEngine(scene.DefaultConfig())
	require.NoError(t, e.SetNewItem("ellipse"))
	assert.Equal(t, "placing", e.GestureState())

	e.MouseDown(100, 100, MouseLeft, false)
	e.MouseMove(200, 160, false)
	e.MouseUp(200, 160, MouseLeft, false)
	assert.Equal(t, 1, e.Scene().ItemCount())
	assert.Equal(t, "placing", e.GestureState())

	e.MouseDown(0, 0, MouseRight, false)
	assert.Equal(t, "ready", e.GestureState())

	h := e.HistoryState()
	assert.True(t, h.CanUndo)
	assert.Equal(t, "Add ellipse", h.UndoTitle)
	assert.True(t, e.Undo())
	assert.Equal(t, 0, e.Scene().ItemCount())
}

func TestSetNewItemUnknownType(t *testing.T) {
	e := NewEngine(scene.DefaultConfig())
	assert.ErrorIs(t, e.SetNewItem("hexagon"), item.ErrUnknownType)
	assert.Equal(t, "ready", e.GestureState())
}

func TestHitTestAndSelection(t *testing.T) {
	e := newTestEngine(t)
	client := e.Scene().Items()[0]
	assert.Equal(t, client.ID(), e.HitTest(90, 130))
	assert.Empty(t, e.HitTest(1900, 1900))

	e.SetSelection([]string{client.ID(), "item_missing"})
	assert.Equal(t, []string{client.ID()}, e.SelectionIDs())
	assert.JSONEq(t, `["`+client.ID()+`"]`, e.GetSelection())

	e.ClearSelection()
	assert.JSONEq(t, `[]`, e.GetSelection())
}

func TestRenderOverlays(t *testing.T) {
	e := newTestEngine(t)
	client := e.Scene().Items()[0]
	e.SetSelection([]string{client.ID()})

	ops := map[string]int{}
	for _, cmd := range e.DrawCommands() {
		ops[cmd.Op]++
	}
	assert.Equal(t, 1, ops["selection"])
	assert.Equal(t, 8, ops["handle"])
	assert.Zero(t, ops["rubberband"])

	var cmds []render.DrawCommand
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &cmds))
	assert.NotEmpty(t, cmds)
}

func TestMoveSelectionKeepsWireAttached(t *testing.T) {
	e := newTestEngine(t)
	items := e.Scene().Items()
	client, wire := items[0], items[2]
	e.SetSelection([]string{client.ID()})

	applied, err := e.MoveSelection(0, 40)
	require.NoError(t, err)
	assert.Equal(t, 40.0, applied.Y)
	assert.Equal(t, wire.Point(0).ScenePos(), wire.Point(0).Targets()[0].ScenePos())
	assert.True(t, e.IsDirty())

	e.MarkSaved()
	assert.False(t, e.IsDirty())
}

func TestCopyPaste(t *testing.T) {
	e := newTestEngine(t)
	e.SelectAll()
	require.NoError(t, e.Copy())

	ids, err := e.Paste()
	require.NoError(t, err)
	assert.Len(t, ids, 8)
	assert.Equal(t, 16, e.Scene().ItemCount())
	assert.ElementsMatch(t, ids, e.SelectionIDs())

	wire := e.Scene().ItemByID(ids[2])
	require.NotNil(t, wire)
	require.Len(t, wire.Point(0).Targets(), 1)
	assert.Equal(t, ids[0], wire.Point(0).Targets()[0].Item().ID())
}

func TestCutPasteRestores(t *testing.T) {
	e := newTestEngine(t)
	store := e.Scene().Items()[3]
	e.SetSelection([]string{store.ID()})
	require.NoError(t, e.Cut())
	assert.Equal(t, 7, e.Scene().ItemCount())

	ids, err := e.Paste()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, 8, e.Scene().ItemCount())
}

func TestPasteEmptyClipboard(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Paste()
	assert.ErrorIs(t, err, ErrClipboardEmpty)
}

func TestPasteForeignDocument(t *testing.T) {
	src := newTestEngine(t)
	cb := NewMemoryClipboard()
	require.NoError(t, cb.WriteAll(src.GetDocument()))

	dst := NewEngine(scene.DefaultConfig(), WithClipboard(cb))
	ids, err := dst.Paste()
	require.NoError(t, err)
	assert.Len(t, ids, 8)
}

func TestGroupUngroupByCommand(t *testing.T) {
	e := newTestEngine(t)
	items := e.Scene().Items()
	e.SetSelection([]string{items[0].ID(), items[1].ID()})
	require.NoError(t, e.Group())
	assert.Equal(t, 7, e.Scene().ItemCount())

	require.NoError(t, e.Ungroup())
	assert.Equal(t, 8, e.Scene().ItemCount())
	assert.True(t, e.Undo())
	assert.Equal(t, 7, e.Scene().ItemCount())
}

func TestPointOperations(t *testing.T) {
	e := NewEngine(scene.DefaultConfig())
	require.NoError(t, e.LoadDocument(`{"version":1,"items":[]}`))
	require.NoError(t, e.SetNewItem("line"))
	e.MouseDown(100, 100, MouseLeft, false)
	e.MouseUp(300, 100, MouseLeft, false)
	e.Cancel()
	require.Equal(t, 1, e.Scene().ItemCount())
	line := e.Scene().Items()[0]

	require.NoError(t, e.ResizePoint(line.Point(1).ID(), 300, 200))
	assert.Equal(t, 200.0, line.Point(1).ScenePos().Y)

	_, err := e.InsertPoint("item_missing", 0, 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, e.RemovePoint("pt_missing"), ErrPointNotFound)
	assert.ErrorIs(t, e.ResizePoint("pt_missing", 0, 0), ErrPointNotFound)
}

func TestThumbnailIsPNG(t *testing.T) {
	e := newTestEngine(t)
	data, err := e.Thumbnail(160, 120)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
}

func TestHistoryStateJSON(t *testing.T) {
	e := newTestEngine(t)
	var h HistoryState
	require.NoError(t, json.Unmarshal([]byte(e.GetHistoryState()), &h))
	assert.False(t, h.CanUndo)
	assert.True(t, h.Clean)
	assert.Equal(t, 8, h.ItemCount)
}
