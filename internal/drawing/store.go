// Package drawing stores drawings and their document snapshots and serves
// them over HTTP.
package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("drawing not found")
	ErrInvalidID = errors.New("invalid drawing id")
)

type Drawing struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is one saved version of a drawing's document.
type Snapshot struct {
	ID        string          `json:"id"`
	DrawingID string          `json:"drawingId"`
	Version   int             `json:"version"`
	Document  json.RawMessage `json:"document"`
	Thumbnail []byte          `json:"thumbnail,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store persists drawings. Snapshot versions of a drawing start at 1 and
// increase by one per save.
type Store interface {
	// CreateDrawing stores d together with its first snapshot.
	CreateDrawing(ctx context.Context, d *Drawing, first *Snapshot) error
	GetDrawing(ctx context.Context, id string) (*Drawing, error)
	ListDrawings(ctx context.Context) ([]Drawing, error)
	// DeleteDrawing removes the drawing and all of its snapshots.
	DeleteDrawing(ctx context.Context, id string) error
	LatestSnapshot(ctx context.Context, drawingID string) (*Snapshot, error)
	// SaveSnapshot assigns snap the next version and stores it.
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	Close() error
}
