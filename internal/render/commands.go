package render

import (
	"encoding/json"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path", "text", "selection", "handle", "rubberband"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Text        string        `json:"text,omitempty"`        // Text run for "text" ops
	FontSize    float64       `json:"fontSize,omitempty"`
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	Rect        *geom.Rect    `json:"rect,omitempty"` // Scene rect for overlay ops
}

// DisplayList is a Painter that records draw commands in painter's order
// (back to front).
type DisplayList struct {
	commands  []DrawCommand
	objectID  string
	transform geom.Matrix2D
}

// NewDisplayList creates an empty display list.
func NewDisplayList() *DisplayList {
	return &DisplayList{transform: geom.Identity()}
}

func (d *DisplayList) Begin(objectID string, transform geom.Matrix2D) {
	d.objectID = objectID
	d.transform = transform
}

func (d *DisplayList) Path(path []PathCommand, style Style) {
	if len(path) == 0 {
		return
	}
	d.commands = append(d.commands, DrawCommand{
		Op:          "path",
		ObjectID:    d.objectID,
		Transform:   d.transform.ToSlice(),
		Path:        path,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
	})
}

func (d *DisplayList) Text(pos geom.Point, text string, size float64, style Style) {
	d.commands = append(d.commands, DrawCommand{
		Op:        "text",
		ObjectID:  d.objectID,
		Transform: d.transform.ToSlice(),
		Text:      text,
		FontSize:  size,
		X:         pos.X,
		Y:         pos.Y,
		Fill:      style.Fill,
	})
}

func (d *DisplayList) End() {
	d.objectID = ""
	d.transform = geom.Identity()
}

// Overlay appends a scene-space decoration such as a selection outline, a
// resize handle or the rubber band.
func (d *DisplayList) Overlay(op, objectID string, r geom.Rect) {
	d.commands = append(d.commands, DrawCommand{Op: op, ObjectID: objectID, Rect: &r})
}

// Commands returns the recorded commands.
func (d *DisplayList) Commands() []DrawCommand {
	return d.commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
