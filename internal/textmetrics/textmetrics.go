// Package textmetrics measures text runs for items that size themselves to
// their content.
package textmetrics

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// Metrics describes the extent of a text run, in points.
type Metrics struct {
	Width   float64
	Height  float64
	Ascent  float64
	Descent float64
}

// Measurer measures text runs at a font size.
type Measurer interface {
	Measure(text string, size float64) Metrics
}

// TrueType measures text with a parsed TrueType font, caching one face per
// size.
type TrueType struct {
	font *truetype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewTrueType parses ttf.
func NewTrueType(ttf []byte) (*TrueType, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &TrueType{font: f, faces: make(map[float64]font.Face)}, nil
}

// NewMono returns a measurer backed by the embedded Go Mono font.
func NewMono() *TrueType {
	m, err := NewTrueType(gomono.TTF)
	if err != nil {
		// gomono.TTF is compiled in; a parse failure is a build defect.
		panic(err)
	}
	return m
}

// Face returns the cached face for size. Non-positive sizes yield nil.
func (m *TrueType) Face(size float64) font.Face {
	if size <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if face, ok := m.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(m.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	m.faces[size] = face
	return face
}

// Measure returns the extent of text, one line per newline.
func (m *TrueType) Measure(text string, size float64) Metrics {
	face := m.Face(size)
	if face == nil {
		return Metrics{}
	}

	fm := face.Metrics()
	ascent := fix(fm.Ascent)
	descent := fix(fm.Descent)
	lineHeight := fix(fm.Height)
	if lineHeight <= 0 {
		lineHeight = ascent + descent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lines := strings.Split(text, "\n")
	width := 0.0
	for _, line := range lines {
		width = math.Max(width, fix(font.MeasureString(face, line)))
	}

	return Metrics{
		Width:   width,
		Height:  ascent + descent + lineHeight*float64(len(lines)-1),
		Ascent:  ascent,
		Descent: descent,
	}
}

func fix(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
