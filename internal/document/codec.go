package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/item"
)

var (
	ErrMalformed    = errors.New("malformed document")
	ErrDanglingLink = errors.New("dangling link")
	ErrUnknownType  = item.ErrUnknownType
)

// Encode captures items, with their children and links, as a document.
// Links to points outside items are not written.
func Encode(items []*item.Item) *Document {
	inside := make(map[*item.Point]bool)
	for _, it := range items {
		for _, pt := range it.AllPoints() {
			inside[pt] = true
		}
	}
	doc := &Document{Version: CurrentVersion, Items: make([]ItemNode, 0, len(items))}
	for _, it := range items {
		doc.Items = append(doc.Items, encodeItem(it, inside))
	}
	return doc
}

func encodeItem(it *item.Item, inside map[*item.Point]bool) ItemNode {
	n := ItemNode{
		ID:       it.ID(),
		Type:     it.UniqueKey(),
		Pos:      Vec{X: it.Pos().X, Y: it.Pos().Y},
		Units:    it.Units().String(),
		Rotation: it.RotationAngle(),
		Flipped:  it.IsFlipped(),
		Flags:    itemFlagsToNames(it.Flags()),
	}
	if props := it.Properties(); len(props) > 0 {
		n.Properties = props
	}
	for _, pt := range it.Points() {
		pn := PointNode{
			ID:       pt.ID(),
			Pos:      Vec{X: pt.Pos().X, Y: pt.Pos().Y},
			Size:     pt.Size(),
			Flags:    pointFlagsToNames(pt.Flags()),
			Category: pt.Category(),
		}
		for _, t := range pt.Targets() {
			if inside[t] {
				pn.Targets = append(pn.Targets, t.ID())
			}
		}
		n.Points = append(n.Points, pn)
	}
	for _, child := range it.Children() {
		n.Children = append(n.Children, encodeItem(child, inside))
	}
	return n
}

// decoder holds the state of one Decode call.
type decoder struct {
	factory *item.Factory
	items   map[string]bool
	points  map[string]*item.Point
	links   []link
}

type link struct {
	from    *item.Point
	targets []string
}

// Decode rebuilds the item forest of doc with f. Nothing is returned unless
// every item, property and link is valid.
func Decode(doc *Document, f *item.Factory) ([]*item.Item, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	if doc.Version < 1 || doc.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, doc.Version)
	}
	d := &decoder{
		factory: f,
		items:   make(map[string]bool),
		points:  make(map[string]*item.Point),
	}
	out := make([]*item.Item, 0, len(doc.Items))
	for i := range doc.Items {
		it, err := d.decodeItem(&doc.Items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := d.resolveLinks(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *decoder) decodeItem(n *ItemNode) (*item.Item, error) {
	it, err := d.factory.New(n.Type)
	if err != nil {
		return nil, fmt.Errorf("decode item %q: %w", n.ID, err)
	}
	if n.ID != "" {
		if d.items[n.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrMalformed, n.ID)
		}
		it.SetID(n.ID)
	}
	d.items[it.ID()] = true

	if n.Flags != nil {
		flags, ok := itemFlagsFromNames(n.Flags)
		if !ok {
			return nil, fmt.Errorf("%w: item %q has unknown flags %v", ErrMalformed, n.ID, n.Flags)
		}
		it.SetFlags(flags)
	}
	if n.Units != "" {
		u, err := item.ParseUnits(n.Units)
		if err != nil || !it.SetUnits(u) {
			return nil, fmt.Errorf("%w: item %q has bad units %q", ErrMalformed, n.ID, n.Units)
		}
	}
	if err := d.decodePoints(it, n); err != nil {
		return nil, err
	}
	for i := range n.Children {
		child, err := d.decodeItem(&n.Children[i])
		if err != nil {
			return nil, err
		}
		if !it.AddChild(child) {
			return nil, fmt.Errorf("%w: item %q rejected child %q", ErrMalformed, n.ID, child.ID())
		}
	}

	if !it.SetPos(geom.Pt(n.Pos.X, n.Pos.Y)) {
		return nil, fmt.Errorf("%w: item %q rejected its position", ErrMalformed, n.ID)
	}
	if !it.SetRotationAngle(n.Rotation) {
		return nil, fmt.Errorf("%w: item %q has bad rotation %d", ErrMalformed, n.ID, n.Rotation)
	}
	if !it.SetFlipped(n.Flipped) {
		return nil, fmt.Errorf("%w: item %q rejected flip", ErrMalformed, n.ID)
	}
	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !it.SetProperty(k, n.Properties[k]) {
			return nil, fmt.Errorf("%w: item %q rejected property %q", ErrMalformed, n.ID, k)
		}
	}
	return it, nil
}

// decodePoints makes the item's point list match the document, reusing the
// points the factory created so kinds keep their indexed roles.
func (d *decoder) decodePoints(it *item.Item, n *ItemNode) error {
	if need := it.Kind().MinPoints(); len(n.Points) < need {
		return fmt.Errorf("%w: item %q needs %d points, has %d", ErrMalformed, n.ID, need, len(n.Points))
	}
	for it.NumPoints() > len(n.Points) {
		it.RemovePoint(it.Point(it.NumPoints() - 1))
	}
	for it.NumPoints() < len(n.Points) {
		it.AddPoint(item.NewPoint(geom.Point{}, 0))
	}
	for i, pn := range n.Points {
		pt := it.Point(i)
		flags, ok := pointFlagsFromNames(pn.Flags)
		if !ok {
			return fmt.Errorf("%w: point %q has unknown flags %v", ErrMalformed, pn.ID, pn.Flags)
		}
		if pn.ID != "" {
			pt.SetID(pn.ID)
		}
		if _, dup := d.points[pt.ID()]; dup {
			return fmt.Errorf("%w: duplicate point id %q", ErrMalformed, pt.ID())
		}
		d.points[pt.ID()] = pt
		pt.SetPos(geom.Pt(pn.Pos.X, pn.Pos.Y))
		pt.SetFlags(flags)
		pt.SetCategory(pn.Category)
		if pn.Size > 0 {
			pt.SetSize(pn.Size)
		}
		if len(pn.Targets) > 0 {
			d.links = append(d.links, link{from: pt, targets: pn.Targets})
		}
	}
	return nil
}

func (d *decoder) resolveLinks() error {
	for _, l := range d.links {
		for _, id := range l.targets {
			t, ok := d.points[id]
			if !ok {
				return fmt.Errorf("%w: point %q links to %q", ErrDanglingLink, l.from.ID(), id)
			}
			if !l.from.AddTarget(t) && !l.from.IsTarget(t) {
				return fmt.Errorf("%w: point %q cannot link to %q", ErrMalformed, l.from.ID(), id)
			}
		}
	}
	return nil
}

// Marshal encodes items as JSON.
func Marshal(items []*item.Item) ([]byte, error) {
	return json.Marshal(Encode(items))
}

// Unmarshal parses a JSON document and decodes its items.
func Unmarshal(data []byte, f *item.Factory) (*Document, []*item.Item, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	items, err := Decode(&doc, f)
	if err != nil {
		return nil, nil, err
	}
	return &doc, items, nil
}
