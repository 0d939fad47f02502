package render

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
)

func TestDisplayListRecordsTransform(t *testing.T) {
	dl := NewDisplayList()
	dl.Begin("item_1", geom.Translate(10, 20))
	dl.Path(RectPath(geom.Rect{Width: 5, Height: 5}), Style{Stroke: "#000000", StrokeWidth: 1})
	dl.Text(geom.Pt(1, 2), "hi", 12, Style{})
	dl.End()
	dl.Overlay("selection", "item_1", geom.Rect{X: 10, Y: 20, Width: 5, Height: 5})

	cmds := dl.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, "path", cmds[0].Op)
	assert.Equal(t, "item_1", cmds[0].ObjectID)
	assert.Equal(t, []float64{1, 0, 0, 1, 10, 20}, cmds[0].Transform)
	assert.Equal(t, "text", cmds[1].Op)
	assert.Equal(t, "hi", cmds[1].Text)
	assert.Nil(t, cmds[2].Transform)
}

func TestDisplayListSkipsEmptyPath(t *testing.T) {
	dl := NewDisplayList()
	dl.Path(nil, Style{})
	assert.Empty(t, dl.Commands())
}

func TestDrawCommandsToJSON(t *testing.T) {
	s, err := DrawCommandsToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	dl := NewDisplayList()
	dl.Path(PolylinePath([]geom.Point{{X: 0, Y: 0}, {X: 3, Y: 4}}, false), Style{Stroke: "#ff0000"})
	s, err = DrawCommandsToJSON(dl.Commands())
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "#ff0000", decoded[0]["stroke"])
}

func TestPathBuilders(t *testing.T) {
	assert.Len(t, RectPath(geom.Rect{Width: 1, Height: 1}), 5)
	assert.Len(t, EllipsePath(geom.Rect{Width: 10, Height: 4}), 6)
	assert.Nil(t, PolylinePath(nil, true))

	closed := PolylinePath([]geom.Point{{}, {X: 1}, {X: 1, Y: 1}}, true)
	assert.Equal(t, PathCommand{"Z"}, closed[len(closed)-1])

	first := EllipsePath(geom.Rect{X: 0, Y: 0, Width: 10, Height: 4})[0]
	assert.Equal(t, PathCommand{"M", 10.0, 2.0}, first)
}

func TestRasterEncodesPNG(t *testing.T) {
	r := NewRaster(64, 32, geom.Rect{Width: 128, Height: 64}, nil)
	r.Begin("item_1", geom.Translate(8, 8))
	r.Path(RectPath(geom.Rect{Width: 40, Height: 20}), Style{Fill: "#3366ff", Stroke: "#000000"})
	r.Text(geom.Pt(0, 0), "ignored without faces", 12, Style{})
	r.End()

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}
