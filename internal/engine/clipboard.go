package engine

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/inamate/diagrammer/backend-go/internal/document"
)

var ErrClipboardEmpty = errors.New("clipboard is empty")

// Clipboard stores copied items as a JSON document.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// MemoryClipboard keeps the last copy in process.
type MemoryClipboard struct {
	text string
}

func NewMemoryClipboard() *MemoryClipboard { return &MemoryClipboard{} }

func (c *MemoryClipboard) ReadAll() (string, error) { return c.text, nil }

func (c *MemoryClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

// SystemClipboard uses the desktop clipboard, so drawings can be copied
// between processes.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboardAvailable reports whether the platform clipboard can be
// used.
func SystemClipboardAvailable() bool { return !clipboard.Unsupported }

// Copy places the selection on the clipboard.
func (e *Engine) Copy() error {
	copies := e.scene.CopySelection()
	if len(copies) == 0 {
		return nil
	}
	data, err := document.Marshal(copies)
	if err != nil {
		return err
	}
	return e.clipboard.WriteAll(string(data))
}

// Cut places the selection on the clipboard and removes it.
func (e *Engine) Cut() error {
	copies, err := e.scene.Cut()
	if err != nil {
		return err
	}
	data, err := document.Marshal(copies)
	if err != nil {
		return err
	}
	return e.clipboard.WriteAll(string(data))
}

// Paste adds the clipboard's items to the scene and returns their IDs.
func (e *Engine) Paste() ([]string, error) {
	text, err := e.clipboard.ReadAll()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrClipboardEmpty
	}
	_, items, err := document.Unmarshal([]byte(text), e.factory)
	if err != nil {
		return nil, err
	}
	pasted, err := e.scene.Paste(items)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(pasted))
	for i, it := range pasted {
		ids[i] = it.ID()
	}
	return ids, nil
}
