package textmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonoMeasure(t *testing.T) {
	m := NewMono()

	short := m.Measure("ab", 12)
	long := m.Measure("abcd", 12)
	assert.Greater(t, short.Width, 0.0)
	assert.InDelta(t, short.Width*2, long.Width, 0.5)
	assert.Greater(t, short.Height, 0.0)

	twoLines := m.Measure("ab\nab", 12)
	assert.Equal(t, short.Width, twoLines.Width)
	assert.Greater(t, twoLines.Height, short.Height)

	bigger := m.Measure("ab", 24)
	assert.Greater(t, bigger.Width, short.Width)
}

func TestFaceCache(t *testing.T) {
	m := NewMono()
	require.NotNil(t, m.Face(10))
	assert.Same(t, m.Face(10), m.Face(10))
	assert.Nil(t, m.Face(0))
	assert.Equal(t, Metrics{}, m.Measure("x", -1))
}

func TestNewTrueTypeRejectsGarbage(t *testing.T) {
	_, err := NewTrueType([]byte("not a font"))
	assert.Error(t, err)
}
