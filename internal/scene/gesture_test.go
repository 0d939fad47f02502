package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
	"github.com/inamate/diagrammer/backend-go/internal/shapes"
)

func TestPlaceMouseDownAndUp(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.SetNewItem(shapes.NewLine(geom.Pt(0, 0), geom.Pt(100, 0))))
	assert.Equal(t, StatePlacing, s.State())

	s.MouseDown(geom.Pt(0, 0), ButtonLeft, 0)
	s.MouseMove(geom.Pt(60, 30), 0)
	assert.Zero(t, s.ItemCount())
	s.MouseUp(geom.Pt(100, 50), ButtonLeft, 0)

	require.Equal(t, 1, s.ItemCount())
	placed := s.Items()[0]
	assertNear(t, geom.Pt(0, 0), placed.Point(0).ScenePos())
	assertNear(t, geom.Pt(100, 50), placed.Point(1).ScenePos())
	assert.Equal(t, []*item.Item{placed}, s.Selection())
	assert.Equal(t, StatePlacing, s.State())
	assert.NotSame(t, placed, s.Preview())

	require.True(t, s.Undo())
	assert.Zero(t, s.ItemCount())
}

func TestPlaceTwoClick(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.SetNewItem(shapes.NewRect(geom.Rect{Width: 100, Height: 60})))

	s.MouseDown(geom.Pt(10, 10), ButtonLeft, 0)
	s.MouseUp(geom.Pt(10, 10), ButtonLeft, 0)
	assert.Zero(t, s.ItemCount())
	s.MouseMove(geom.Pt(50, 40), 0)
	s.MouseDown(geom.Pt(70, 50), ButtonLeft, 0)
	s.MouseUp(geom.Pt(70, 50), ButtonLeft, 0)

	require.Equal(t, 1, s.ItemCount())
	r := s.Items()[0]
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 60, Height: 40}, r.SceneBoundingRect())
}

func TestPlaceMouseUpRepeats(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.SetNewItem(shapes.NewText(fixedMeasurer{}, "label", 10)))

	s.MouseMove(geom.Pt(33, 47), 0)
	assert.Equal(t, geom.Pt(30, 50), s.Preview().Pos())
	s.MouseUp(geom.Pt(33, 47), ButtonLeft, 0)
	s.MouseUp(geom.Pt(120, 80), ButtonLeft, 0)

	require.Equal(t, 2, s.ItemCount())
	assert.Equal(t, geom.Pt(30, 50), s.Items()[0].Pos())
	assert.Equal(t, geom.Pt(120, 80), s.Items()[1].Pos())
	assert.NotEqual(t, s.Items()[0].ID(), s.Items()[1].ID())

	s.MouseDown(geom.Pt(0, 0), ButtonRight, 0)
	assert.Equal(t, StateReady, s.State())
	assert.Nil(t, s.Preview())
	assert.Equal(t, 2, s.ItemCount())
}

func TestPlacementConnectsOnCommit(t *testing.T) {
	s := newTestScene(t)
	existing := shapes.NewLine(geom.Pt(0, 0), geom.Pt(100, 0))
	require.NoError(t, s.AddItem(existing))
	require.NoError(t, s.SetNewItem(shapes.NewLine(geom.Pt(0, 0), geom.Pt(10, 0))))

	s.MouseDown(geom.Pt(100, 0), ButtonLeft, 0)
	s.MouseUp(geom.Pt(200, 0), ButtonLeft, 0)

	placed := s.Items()[1]
	assert.True(t, placed.Point(0).IsTarget(existing.Point(1)))
	require.True(t, s.Undo())
	assert.Empty(t, existing.Point(1).Targets())
}

func TestSetNewItemRejectsOwned(t *testing.T) {
	s := newTestScene(t)
	r := shapes.NewRect(geom.Rect{Width: 10, Height: 10})
	require.NoError(t, s.AddItem(r))
	assert.ErrorIs(t, s.SetNewItem(r), ErrAlreadyOwned)
	assert.ErrorIs(t, s.SetNewItem(nil), ErrNilItem)
	assert.Equal(t, StateReady, s.State())
}

func TestDragMoveIsOneCommand(t *testing.T) {
	s := newTestScene(t)
	r := shapes.NewRect(geom.Rect{Width: 100, Height: 60})
	require.NoError(t, s.AddItem(r))
	count := s.History().Count()

	s.MouseDown(geom.Pt(50, 30), ButtonLeft, 0)
	assert.Equal(t, StateSelect, s.State())
	assert.Equal(t, []*item.Item{r}, s.Selection())
	s.MouseMove(geom.Pt(53, 30), 0)
	assert.Equal(t, StateMoveItems, s.State())
	s.MouseMove(geom.Pt(61, 44), 0)
	s.MouseMove(geom.Pt(74, 52), 0)
	s.MouseUp(geom.Pt(74, 52), ButtonLeft, 0)

	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, geom.Pt(20, 20), r.Pos())
	assert.Equal(t, count+1, s.History().Count())
	assert.False(t, s.History().IsOpen())

	require.True(t, s.Undo())
	assert.Equal(t, geom.Pt(0, 0), r.Pos())
}

func TestDragResizeFiveStepsOneUndo(t *testing.T) {
	s := newTestScene(t)
	l := shapes.NewLine(geom.Pt(0, 0), geom.Pt(100, 0))
	require.NoError(t, s.AddItem(l))
	require.NoError(t, s.Select(l, false))
	count := s.History().Count()

	s.MouseDown(geom.Pt(100, 0), ButtonLeft, 0)
	require.Equal(t, StateResizeItem, s.State())
	for i := 1; i <= 5; i++ {
		s.MouseMove(geom.Pt(100+float64(i)*10, float64(i)*10), 0)
	}
	s.MouseUp(geom.Pt(150, 50), ButtonLeft, 0)

	assertNear(t, geom.Pt(150, 50), l.Point(1).ScenePos())
	assert.Equal(t, count+1, s.History().Count())

	require.True(t, s.Undo())
	assertNear(t, geom.Pt(100, 0), l.Point(1).ScenePos())
	assert.Equal(t, count, s.History().Index())
}

func TestDragResizeKeepsChainLinked(t *testing.T) {
	s := newTestScene(t)
	a := shapes.NewLine(geom.Pt(0, 0), geom.Pt(100, 0))
	b := shapes.NewLine(geom.Pt(100, 0), geom.Pt(200, 0))
	c := shapes.NewLine(geom.Pt(200, 0), geom.Pt(300, 0))
	require.True(t, a.Point(1).AddTarget(b.Point(0)))
	require.True(t, b.Point(1).AddTarget(c.Point(0)))
	require.NoError(t, s.AddItems([]*item.Item{a, b, c}))
	require.NoError(t, s.Select(a, false))

	s.MouseDown(geom.Pt(0, 0), ButtonLeft, 0)
	s.MouseMove(geom.Pt(0, 20), 0)
	s.MouseMove(geom.Pt(0, 40), 0)
	s.MouseUp(geom.Pt(0, 40), ButtonLeft, 0)

	assertNear(t, geom.Pt(0, 40), a.Point(0).ScenePos())
	assert.True(t, a.Point(1).IsTarget(b.Point(0)))
	assertNear(t, geom.Pt(200, 0), c.Point(0).ScenePos())
}

func TestCancelRollsBackDrag(t *testing.T) {
	s := newTestScene(t)
	r := shapes.NewRect(geom.Rect{Width: 100, Height: 60})
	require.NoError(t, s.AddItem(r))
	count := s.History().Count()

	s.MouseDown(geom.Pt(50, 30), ButtonLeft, 0)
	s.MouseMove(geom.Pt(90, 30), 0)
	assert.Equal(t, geom.Pt(40, 0), r.Pos())
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())
	assert.ErrorIs(t, s.RotateSelection(), ErrGestureActive)

	s.Cancel()
	assert.Equal(t, geom.Pt(0, 0), r.Pos())
	assert.Equal(t, count, s.History().Count())
	assert.Equal(t, StateReady, s.State())
}

func TestRubberBandSelect(t *testing.T) {
	s := newTestScene(t)
	a := shapes.NewRect(geom.Rect{X: 10, Y: 10, Width: 20, Height: 20})
	b := shapes.NewRect(geom.Rect{X: 200, Y: 200, Width: 20, Height: 20})
	require.NoError(t, s.AddItems([]*item.Item{a, b}))
	require.NoError(t, s.Select(b, false))

	s.MouseDown(geom.Pt(0, 0), ButtonLeft, 0)
	assert.Equal(t, StateRubberBand, s.State())
	s.MouseMove(geom.Pt(50, 50), 0)
	band, ok := s.RubberBand()
	require.True(t, ok)
	assert.Equal(t, geom.Rect{Width: 50, Height: 50}, band)
	assert.Equal(t, []*item.Item{b}, s.Selection())

	s.MouseUp(geom.Pt(50, 50), ButtonLeft, ModShift)
	assert.Equal(t, []*item.Item{a, b}, s.Selection())

	s.MouseDown(geom.Pt(500, 500), ButtonLeft, 0)
	s.MouseUp(geom.Pt(510, 510), ButtonLeft, 0)
	assert.Empty(t, s.Selection())
}

func TestShiftClickToggles(t *testing.T) {
	s := newTestScene(t)
	a := shapes.NewRect(geom.Rect{X: 0, Y: 0, Width: 20, Height: 20})
	b := shapes.NewRect(geom.Rect{X: 100, Y: 0, Width: 20, Height: 20})
	require.NoError(t, s.AddItems([]*item.Item{a, b}))

	s.MouseDown(geom.Pt(10, 10), ButtonLeft, 0)
	s.MouseUp(geom.Pt(10, 10), ButtonLeft, 0)
	s.MouseDown(geom.Pt(110, 10), ButtonLeft, ModShift)
	s.MouseUp(geom.Pt(110, 10), ButtonLeft, ModShift)
	assert.Equal(t, []*item.Item{a, b}, s.Selection())

	s.MouseDown(geom.Pt(10, 10), ButtonLeft, ModShift)
	s.MouseUp(geom.Pt(10, 10), ButtonLeft, ModShift)
	assert.Equal(t, []*item.Item{b}, s.Selection())
}

func TestClickOnPointLeavesIt(t *testing.T) {
	s := newTestScene(t)
	l := shapes.NewLine(geom.Pt(13, 7), geom.Pt(100, 0))
	require.NoError(t, s.AddItem(l))
	require.NoError(t, s.Select(l, false))
	count := s.History().Count()

	s.MouseDown(geom.Pt(13, 7), ButtonLeft, 0)
	require.Equal(t, StateResizeItem, s.State())
	s.MouseUp(geom.Pt(13, 7), ButtonLeft, 0)

	assert.Equal(t, StateReady, s.State())
	assertNear(t, geom.Pt(13, 7), l.Point(0).ScenePos())
	assert.Equal(t, count, s.History().Count())
}

func TestDragResizeConnectPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  item.PlaceMode
		midDrag bool
	}{
		{"strict waits for release", item.PlaceStrict, false},
		{"loose links while dragging", item.PlaceLoose, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t)
			cfg := s.Config()
			cfg.PlacePolicy = tt.policy
			s.SetConfig(cfg)
			a := shapes.NewLine(geom.Pt(0, 0), geom.Pt(100, 0))
			b := shapes.NewLine(geom.Pt(200, 0), geom.Pt(300, 0))
			require.NoError(t, s.AddItems([]*item.Item{a, b}))
			require.NoError(t, s.Select(a, false))

			s.MouseDown(geom.Pt(100, 0), ButtonLeft, 0)
			s.MouseMove(geom.Pt(150, 0), 0)
			s.MouseMove(geom.Pt(200, 0), 0)
			assert.Equal(t, tt.midDrag, a.Point(1).IsTarget(b.Point(0)))

			s.MouseUp(geom.Pt(200, 0), ButtonLeft, 0)
			assert.True(t, a.Point(1).IsTarget(b.Point(0)))

			require.True(t, s.Undo())
			assert.False(t, a.Point(1).IsTarget(b.Point(0)))
			assertNear(t, geom.Pt(100, 0), a.Point(1).ScenePos())
		})
	}
}
