package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
)

// FaceFunc returns a font face for the given point size. A nil FaceFunc, or
// one that returns nil, leaves text unrendered.
type FaceFunc func(size float64) font.Face

// Raster is a Painter that draws into an RGBA image. The view rect in scene
// coordinates is scaled uniformly to fit the image.
type Raster struct {
	dc        *gg.Context
	faces     FaceFunc
	view      geom.Matrix2D
	transform geom.Matrix2D
}

// NewRaster creates a white image of the given size showing view.
func NewRaster(width, height int, view geom.Rect, faces FaceFunc) *Raster {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	s := 1.0
	if view.Width > 0 && view.Height > 0 {
		s = math.Min(float64(width)/view.Width, float64(height)/view.Height)
	}
	v := geom.Scale(s, s).Multiply(geom.Translate(-view.X, -view.Y))

	return &Raster{dc: dc, faces: faces, view: v, transform: v}
}

func (r *Raster) Begin(_ string, transform geom.Matrix2D) {
	r.transform = r.view.Multiply(transform)
}

func (r *Raster) End() {
	r.transform = r.view
}

func (r *Raster) Path(path []PathCommand, style Style) {
	if len(path) == 0 {
		return
	}
	r.dc.NewSubPath()
	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		op, _ := cmd[0].(string)
		switch op {
		case "M":
			p := r.point(cmd, 1)
			r.dc.MoveTo(p.X, p.Y)
		case "L":
			p := r.point(cmd, 1)
			r.dc.LineTo(p.X, p.Y)
		case "Q":
			c, p := r.point(cmd, 1), r.point(cmd, 3)
			r.dc.QuadraticTo(c.X, c.Y, p.X, p.Y)
		case "C":
			c1, c2, p := r.point(cmd, 1), r.point(cmd, 3), r.point(cmd, 5)
			r.dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
		case "Z":
			r.dc.ClosePath()
		}
	}

	if style.Fill != "" && style.Fill != "none" {
		r.dc.SetHexColor(style.Fill)
		if style.Stroke != "" {
			r.dc.FillPreserve()
		} else {
			r.dc.Fill()
		}
	}
	if style.Stroke != "" && style.Stroke != "none" {
		w := style.StrokeWidth
		if w <= 0 {
			w = 1
		}
		r.dc.SetHexColor(style.Stroke)
		r.dc.SetLineWidth(w * r.scale())
		r.dc.Stroke()
	}
	r.dc.ClearPath()
}

func (r *Raster) Text(pos geom.Point, text string, size float64, style Style) {
	if r.faces == nil || text == "" {
		return
	}
	face := r.faces(size * r.scale())
	if face == nil {
		return
	}
	p := r.transform.Apply(pos)
	fill := style.Fill
	if fill == "" {
		fill = "#000000"
	}

	r.dc.Push()
	defer r.dc.Pop()
	r.dc.SetFontFace(face)
	r.dc.SetHexColor(fill)
	r.dc.Translate(p.X, p.Y)
	r.dc.Rotate(math.Atan2(r.transform[1], r.transform[0]))
	if r.transform.Determinant() < 0 {
		r.dc.Scale(-1, 1)
	}
	r.dc.DrawString(text, 0, 0)
}

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Raster) point(cmd PathCommand, i int) geom.Point {
	if len(cmd) < i+2 {
		return geom.Point{}
	}
	return r.transform.Apply(geom.Pt(toFloat64(cmd[i]), toFloat64(cmd[i+1])))
}

func (r *Raster) scale() float64 {
	return math.Sqrt(math.Abs(r.transform.Determinant()))
}
