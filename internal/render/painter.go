// Package render defines the opaque painting capability items draw through,
// plus two painters: a display list for the web front end and a raster
// painter for thumbnails.
package render

import "github.com/inamate/diagrammer/backend-go/internal/geom"

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []interface{}

// Style carries the paint attributes of a path or text run.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Painter receives drawing calls from items. Coordinates passed to Path and
// Text are in the item's local frame; Begin supplies the local-to-scene
// transform for everything until the matching End.
type Painter interface {
	Begin(objectID string, transform geom.Matrix2D)
	Path(path []PathCommand, style Style)
	Text(pos geom.Point, text string, size float64, style Style)
	End()
}

// toFloat64 converts an interface{} to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
