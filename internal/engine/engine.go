// Package engine is the string and JSON facade over a scene used by the
// wasm bridge and by realtime sessions.
package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
	"github.com/inamate/diagrammer/backend-go/internal/shapes"
	"github.com/inamate/diagrammer/backend-go/internal/textmetrics"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrPointNotFound = errors.New("point not found")
)

// Engine owns one scene and the collaborators it needs. It is not safe for
// concurrent use.
type Engine struct {
	scene     *scene.Scene
	factory   *item.Factory
	metrics   *textmetrics.TrueType
	clipboard Clipboard
	log       *slog.Logger
	name      string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClipboard replaces the default in-memory clipboard.
func WithClipboard(c Clipboard) Option {
	return func(e *Engine) { e.clipboard = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine with an empty scene.
func NewEngine(cfg scene.Config, opts ...Option) *Engine {
	e := &Engine{
		metrics:   textmetrics.NewMono(),
		clipboard: NewMemoryClipboard(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.factory = shapes.NewFactory(e.metrics)
	e.scene = scene.New(cfg, e.factory, scene.WithLogger(e.log))
	return e
}

// Scene exposes the underlying scene.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// --- Documents ---

// LoadDocument replaces the scene with the items of a JSON document.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, items, err := document.Unmarshal([]byte(jsonData), e.factory)
	if err != nil {
		e.log.Warn("failed to load document", "error", err)
		return err
	}
	return e.load(doc, items)
}

// LoadSampleDocument loads the built-in sample diagram.
func (e *Engine) LoadSampleDocument() error {
	doc := document.NewSampleDocument(e.metrics)
	items, err := document.Decode(doc, e.factory)
	if err != nil {
		return err
	}
	return e.load(doc, items)
}

func (e *Engine) load(doc *document.Document, items []*item.Item) error {
	if s := doc.Settings; s != nil {
		cfg := e.scene.Config()
		if s.Grid > 0 {
			cfg.Grid = s.Grid
		}
		if s.ContentWidth > 0 && s.ContentHeight > 0 {
			cfg.ContentRect = geom.Rect{Width: s.ContentWidth, Height: s.ContentHeight}
		}
		e.scene.SetConfig(cfg)
	}
	e.name = doc.Name
	return e.scene.Load(items)
}

// Document captures the current scene.
func (e *Engine) Document() *document.Document {
	cfg := e.scene.Config()
	doc := document.Encode(e.scene.Items())
	doc.Name = e.name
	doc.Settings = &document.Settings{
		Grid:          cfg.Grid,
		ContentWidth:  cfg.ContentRect.Width,
		ContentHeight: cfg.ContentRect.Height,
	}
	return doc
}

// GetDocument returns the current scene as a JSON document.
func (e *Engine) GetDocument() string {
	data, err := json.Marshal(e.Document())
	if err != nil {
		e.log.Error("failed to encode document", "error", err)
		return "{}"
	}
	return string(data)
}

// --- Gestures ---

// Mouse buttons as reported by the DOM.
const (
	MouseLeft  = 0
	MouseRight = 2
)

func button(b int) scene.Button {
	if b == MouseRight {
		return scene.ButtonRight
	}
	return scene.ButtonLeft
}

func modifiers(shift bool) scene.Modifiers {
	if shift {
		return scene.ModShift
	}
	return 0
}

func (e *Engine) MouseDown(x, y float64, b int, shift bool) {
	e.scene.MouseDown(geom.Pt(x, y), button(b), modifiers(shift))
}

func (e *Engine) MouseMove(x, y float64, shift bool) {
	e.scene.MouseMove(geom.Pt(x, y), modifiers(shift))
}

func (e *Engine) MouseUp(x, y float64, b int, shift bool) {
	e.scene.MouseUp(geom.Pt(x, y), button(b), modifiers(shift))
}

// Cancel aborts the current gesture or placement.
func (e *Engine) Cancel() { e.scene.Cancel() }

// SetNewItem enters placement mode for the given type key.
func (e *Engine) SetNewItem(typeKey string) error {
	template, err := e.factory.New(typeKey)
	if err != nil {
		return err
	}
	return e.scene.SetNewItem(template)
}

// GestureState returns the name of the current gesture state.
func (e *Engine) GestureState() string { return e.scene.State().String() }

// --- Commands ---

func (e *Engine) Undo() bool { return e.scene.Undo() }
func (e *Engine) Redo() bool { return e.scene.Redo() }

func (e *Engine) SelectAll()      { e.scene.SelectAll() }
func (e *Engine) ClearSelection() { e.scene.ClearSelection() }

// SetSelection selects the top-level items with the given IDs. Unknown IDs
// are ignored.
func (e *Engine) SetSelection(ids []string) {
	var items []*item.Item
	for _, id := range ids {
		if it := e.scene.ItemByID(id); it != nil && it.Parent() == nil {
			items = append(items, it)
		}
	}
	e.scene.SetSelection(items)
}

func (e *Engine) DeleteSelection() error { return e.scene.RemoveSelection() }

// MoveSelection nudges the selection and returns the applied delta.
func (e *Engine) MoveSelection(dx, dy float64) (geom.Point, error) {
	return e.scene.MoveSelection(geom.Pt(dx, dy))
}

func (e *Engine) Rotate() error     { return e.scene.RotateSelection() }
func (e *Engine) RotateBack() error { return e.scene.RotateBackSelection() }
func (e *Engine) Flip() error       { return e.scene.FlipSelection() }

func (e *Engine) Group() error {
	_, err := e.scene.Group()
	return err
}

func (e *Engine) Ungroup() error {
	_, err := e.scene.Ungroup()
	return err
}

func (e *Engine) BringToFront() error { return e.scene.BringToFront() }
func (e *Engine) SendToBack() error   { return e.scene.SendToBack() }
func (e *Engine) BringForward() error { return e.scene.BringForward() }
func (e *Engine) SendBackward() error { return e.scene.SendBackward() }

// ResizePoint drags a control point to a scene position as one command.
func (e *Engine) ResizePoint(pointID string, x, y float64) error {
	pt := e.scene.PointByID(pointID)
	if pt == nil {
		return fmt.Errorf("resize %q: %w", pointID, ErrPointNotFound)
	}
	return e.scene.ResizePoint(pt, geom.Pt(x, y))
}

// InsertPoint adds a point to an item and returns the new point's ID.
func (e *Engine) InsertPoint(itemID string, x, y float64) (string, error) {
	it := e.scene.ItemByID(itemID)
	if it == nil {
		return "", fmt.Errorf("insert point on %q: %w", itemID, ErrItemNotFound)
	}
	pt, err := e.scene.InsertPoint(it, geom.Pt(x, y))
	if err != nil {
		return "", err
	}
	return pt.ID(), nil
}

func (e *Engine) RemovePoint(pointID string) error {
	pt := e.scene.PointByID(pointID)
	if pt == nil {
		return fmt.Errorf("remove point %q: %w", pointID, ErrPointNotFound)
	}
	return e.scene.RemovePoint(pt)
}

// MarkSaved records the current history position as the saved state.
func (e *Engine) MarkSaved() { e.scene.SetClean() }

// IsDirty reports whether the scene differs from the saved state.
func (e *Engine) IsDirty() bool { return !e.scene.IsClean() }

// --- Queries ---

// Render returns the draw commands for the scene and its overlays as JSON.
func (e *Engine) Render() string {
	result, err := render.DrawCommandsToJSON(e.DrawCommands())
	if err != nil {
		e.log.Error("failed to encode draw commands", "error", err)
	}
	return result
}

// DrawCommands paints the scene, then selection outlines, control handles of
// selected resizable items and the rubber band.
func (e *Engine) DrawCommands() []render.DrawCommand {
	dl := render.NewDisplayList()
	e.scene.Render(dl)
	for _, it := range e.scene.Selection() {
		dl.Overlay("selection", it.ID(), it.SceneBoundingRect())
		it.Walk(func(c *item.Item) bool {
			if !c.Flags().Has(item.Resizable) {
				return true
			}
			for _, pt := range c.Points() {
				if pt.IsControl() {
					p := pt.ScenePos()
					dl.Overlay("handle", pt.ID(), geom.RectFromPoints(p, p).Adjusted(pt.Size()))
				}
			}
			return true
		})
	}
	if band, ok := e.scene.RubberBand(); ok {
		dl.Overlay("rubberband", "", band)
	}
	return dl.Commands()
}

// HitTest returns the ID of the topmost item at (x, y), or "".
func (e *Engine) HitTest(x, y float64) string {
	if it := e.scene.ItemAt(geom.Pt(x, y)); it != nil {
		return it.ID()
	}
	return ""
}

// SelectionIDs returns the IDs of the selected items in z-order.
func (e *Engine) SelectionIDs() []string {
	ids := []string{}
	for _, it := range e.scene.Selection() {
		ids = append(ids, it.ID())
	}
	return ids
}

// GetSelection returns the selected item IDs as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.SelectionIDs())
	return string(data)
}

// GetSelectionBounds returns the selection's scene bounds as JSON.
func (e *Engine) GetSelectionBounds() string {
	r, _ := e.scene.SelectionBounds()
	data, _ := json.Marshal(r)
	return string(data)
}

// HistoryState describes the undo stack for the UI.
type HistoryState struct {
	CanUndo   bool   `json:"canUndo"`
	CanRedo   bool   `json:"canRedo"`
	UndoTitle string `json:"undoTitle,omitempty"`
	RedoTitle string `json:"redoTitle,omitempty"`
	Clean     bool   `json:"clean"`
	ItemCount int    `json:"itemCount"`
}

func (e *Engine) HistoryState() HistoryState {
	h := e.scene.History()
	return HistoryState{
		CanUndo:   e.scene.CanUndo(),
		CanRedo:   e.scene.CanRedo(),
		UndoTitle: h.UndoTitle(),
		RedoTitle: h.RedoTitle(),
		Clean:     e.scene.IsClean(),
		ItemCount: e.scene.ItemCount(),
	}
}

// GetHistoryState returns HistoryState as JSON.
func (e *Engine) GetHistoryState() string {
	data, _ := json.Marshal(e.HistoryState())
	return string(data)
}

// --- Thumbnails ---

const thumbnailMargin = 10

// Thumbnail rasterizes the scene to a PNG of the given size, framing every
// item, or the content rect when the scene is empty.
func (e *Engine) Thumbnail(width, height int) ([]byte, error) {
	view := e.scene.Config().ContentRect
	if items := e.scene.Items(); len(items) > 0 {
		rects := make([]geom.Rect, len(items))
		for i, it := range items {
			rects[i] = it.SceneBoundingRect()
		}
		view = geom.UnionAll(rects).Adjusted(thumbnailMargin)
	}
	r := render.NewRaster(width, height, view, e.metrics.Face)
	for _, it := range e.scene.Items() {
		it.Render(r)
	}
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
