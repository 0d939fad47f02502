package document

import (
	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/shapes"
	"github.com/inamate/diagrammer/backend-go/internal/textmetrics"
)

// NewSampleDocument returns a small diagram: two boxes joined by a
// connector, an ellipse hanging off the second box, and captions.
func NewSampleDocument(m textmetrics.Measurer) *Document {
	client := shapes.NewRect(geom.Rect{Width: 120, Height: 60})
	client.SetPos(geom.Pt(80, 120))
	client.SetProperty(shapes.PropFill, "#e8f0fe")

	server := shapes.NewRect(geom.Rect{Width: 120, Height: 60})
	server.SetPos(geom.Pt(400, 120))
	server.SetProperty(shapes.PropFill, "#fce8e6")

	// From the middle of the client's right edge to the server's left edge.
	wire := shapes.NewLine(geom.Pt(200, 150), geom.Pt(400, 150))
	wire.SetProperty(shapes.PropStrokeWidth, 2.0)
	wire.Point(0).AddTarget(client.Point(shapes.MiddleRight))
	wire.Point(1).AddTarget(server.Point(shapes.MiddleLeft))

	store := shapes.NewEllipse(geom.Rect{Width: 80, Height: 50})
	store.SetPos(geom.Pt(420, 280))
	store.SetProperty(shapes.PropFill, "#e6f4ea")

	drop := shapes.NewLine(geom.Pt(460, 180), geom.Pt(460, 280))
	drop.Point(0).AddTarget(server.Point(shapes.BottomMiddle))
	drop.Point(1).AddTarget(store.Point(shapes.TopMiddle))

	items := []*item.Item{client, server, wire, store, drop}
	for _, c := range []struct {
		text string
		at   geom.Point
	}{
		{"client", geom.Pt(110, 155)},
		{"server", geom.Pt(430, 155)},
		{"store", geom.Pt(440, 310)},
	} {
		caption := shapes.NewText(m, c.text, 14)
		caption.SetPos(c.at)
		items = append(items, caption)
	}

	doc := Encode(items)
	doc.Name = "Untitled"
	doc.Settings = &Settings{Grid: 10, ContentWidth: 2000, ContentHeight: 2000}
	return doc
}
