package scene

import (
	"fmt"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

// SelectionMode decides which items a selection rectangle picks.
type SelectionMode int

const (
	// SelectContains picks items whose bounds lie fully inside the rect.
	SelectContains SelectionMode = iota
	// SelectIntersects picks items whose bounds overlap the rect.
	SelectIntersects
)

// ParseSelectionMode accepts "contains" or "intersects".
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch s {
	case "contains", "":
		return SelectContains, nil
	case "intersects":
		return SelectIntersects, nil
	}
	return SelectContains, fmt.Errorf("unknown selection mode %q", s)
}

// ParsePlacePolicy accepts "strict" or "loose".
func ParsePlacePolicy(s string) (item.PlaceMode, error) {
	switch s {
	case "strict", "":
		return item.PlaceStrict, nil
	case "loose":
		return item.PlaceLoose, nil
	}
	return item.PlaceStrict, fmt.Errorf("unknown place policy %q", s)
}

// Config holds the scene's editing settings.
type Config struct {
	// Grid is the snapping step for interactive positions; 0 disables it.
	Grid float64
	// HistoryDepth bounds the undo stack; 0 keeps everything.
	HistoryDepth int
	// ContentRect is the area items are kept inside when ForceInside is set.
	ContentRect geom.Rect
	ForceInside bool
	Selection   SelectionMode
	// PlacePolicy is PlaceStrict or PlaceLoose.
	PlacePolicy item.PlaceMode
	// PasteOffset displaces pasted items on both axes.
	PasteOffset float64
	// GroupKey is the factory key of the composite item used by Group.
	GroupKey string
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Grid:         10,
		HistoryDepth: 100,
		ContentRect:  geom.Rect{Width: 2000, Height: 2000},
		Selection:    SelectContains,
		PlacePolicy:  item.PlaceStrict,
		PasteOffset:  10,
		GroupKey:     "group",
	}
}
