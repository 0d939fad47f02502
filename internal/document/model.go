// Package document is the persisted form of a drawing: an ordered forest of
// items with their points, properties and the links between points.
package document

import "github.com/inamate/diagrammer/backend-go/internal/item"

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 1

type Document struct {
	Version  int        `json:"version"`
	Name     string     `json:"name,omitempty"`
	Settings *Settings  `json:"settings,omitempty"`
	Items    []ItemNode `json:"items"`
}

// Settings are the scene settings saved with a drawing. Zero fields leave
// the scene's configuration unchanged.
type Settings struct {
	Grid          float64 `json:"grid,omitempty"`
	ContentWidth  float64 `json:"contentWidth,omitempty"`
	ContentHeight float64 `json:"contentHeight,omitempty"`
}

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ItemNode struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Pos        Vec            `json:"pos"`
	Units      string         `json:"units,omitempty"`
	Rotation   int            `json:"rotation,omitempty"`
	Flipped    bool           `json:"flipped,omitempty"`
	Flags      []string       `json:"flags,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Points     []PointNode    `json:"points,omitempty"`
	Children   []ItemNode     `json:"children,omitempty"`
}

type PointNode struct {
	ID       string   `json:"id"`
	Pos      Vec      `json:"pos"`
	Size     float64  `json:"size,omitempty"`
	Flags    []string `json:"flags,omitempty"`
	Category int      `json:"category,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

var itemFlagNames = []struct {
	flag item.Flags
	name string
}{
	{item.Movable, "movable"},
	{item.Rotatable, "rotatable"},
	{item.Flippable, "flippable"},
	{item.Resizable, "resizable"},
	{item.InsertPoints, "insertPoints"},
	{item.RemovePoints, "removePoints"},
	{item.InheritUnits, "inheritUnits"},
	{item.SharedPalette, "sharedPalette"},
}

var pointFlagNames = []struct {
	flag item.PointFlags
	name string
}{
	{item.PointControl, "control"},
	{item.PointConnection, "connection"},
	{item.PointFree, "free"},
}

func itemFlagsToNames(f item.Flags) []string {
	var out []string
	for _, n := range itemFlagNames {
		if f.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

func itemFlagsFromNames(names []string) (item.Flags, bool) {
	var f item.Flags
outer:
	for _, name := range names {
		for _, n := range itemFlagNames {
			if n.name == name {
				f |= n.flag
				continue outer
			}
		}
		return 0, false
	}
	return f, true
}

func pointFlagsToNames(f item.PointFlags) []string {
	var out []string
	for _, n := range pointFlagNames {
		if f&n.flag != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func pointFlagsFromNames(names []string) (item.PointFlags, bool) {
	var f item.PointFlags
outer:
	for _, name := range names {
		for _, n := range pointFlagNames {
			if n.name == name {
				f |= n.flag
				continue outer
			}
		}
		return 0, false
	}
	return f, true
}
