package item

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownType = errors.New("unknown item type")

// Constructor builds a blank item of one concrete type.
type Constructor func() *Item

// Factory creates items by type key.
type Factory struct {
	ctors map[string]Constructor
	keys  []string
}

func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

// Register adds or replaces the constructor for key.
func (f *Factory) Register(key string, ctor Constructor) {
	if _, ok := f.ctors[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.ctors[key] = ctor
}

// New constructs a blank item for key.
func (f *Factory) New(key string) (*Item, error) {
	ctor, ok := f.ctors[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, key)
	}
	return ctor(), nil
}

// Has reports whether key is registered.
func (f *Factory) Has(key string) bool {
	_, ok := f.ctors[key]
	return ok
}

// Keys returns registered keys in registration order.
func (f *Factory) Keys() []string {
	return slices.Clone(f.keys)
}
