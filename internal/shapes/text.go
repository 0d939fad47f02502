package shapes

import (
	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/render"
	"github.com/inamate/diagrammer/backend-go/internal/textmetrics"
)

// Text property keys.
const (
	PropText     = "text"
	PropFontSize = "fontSize"
)

// textKind is a text run anchored at its baseline origin. Its extent comes
// from the measurer and is cached until the text or size changes.
type textKind struct {
	item.BaseKind
	measurer textmetrics.Measurer
	metrics  textmetrics.Metrics
}

// NewText creates a text item. The anchor is a connection point.
func NewText(m textmetrics.Measurer, text string, size float64) *item.Item {
	k := &textKind{measurer: m}
	it := item.New(k)
	it.SetPlaceType(item.PlaceMouseUp)
	it.AddPoint(item.NewPoint(geom.Point{}, item.PointConnection))
	if size <= 0 {
		size = 12
	}
	it.SetProperty(PropFontSize, size)
	it.SetProperty(PropText, text)
	return it
}

func (k *textKind) UniqueKey() string { return KeyText }
func (k *textKind) MinPoints() int    { return 1 }

func (k *textKind) Clone() item.Kind {
	return &textKind{measurer: k.measurer, metrics: k.metrics}
}

func (k *textKind) BoundingRect(*item.Item) geom.Rect {
	return geom.Rect{
		Y:      -k.metrics.Ascent,
		Width:  k.metrics.Width,
		Height: k.metrics.Height,
	}.Normalized()
}

func (k *textKind) Render(it *item.Item, p render.Painter) {
	style := styleOf(it)
	style.Fill = it.StringProperty(PropFill, "#000000")
	p.Text(geom.Point{}, it.StringProperty(PropText, ""), it.FloatProperty(PropFontSize, 12), style)
}

// ItemChanging rejects non-positive font sizes and non-string text.
func (k *textKind) ItemChanging(_ *item.Item, c item.Change) (item.Change, bool) {
	if c.Kind != item.ChangeProperty {
		return c, true
	}
	switch c.Key {
	case PropFontSize:
		size, ok := toFloat(c.Value)
		if !ok || size <= 0 {
			return c, false
		}
		c.Value = size
		return c, true
	case PropText:
		_, ok := c.Value.(string)
		return c, ok
	}
	return validateStyle(c)
}

func (k *textKind) ItemChanged(it *item.Item, c item.Change) {
	if c.Kind == item.ChangeProperty && (c.Key == PropText || c.Key == PropFontSize) {
		k.remeasure(it)
	}
}

func (k *textKind) remeasure(it *item.Item) {
	if k.measurer == nil {
		k.metrics = textmetrics.Metrics{}
		return
	}
	k.metrics = k.measurer.Measure(it.StringProperty(PropText, ""), it.FloatProperty(PropFontSize, 12))
}
