package drawing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/typeid"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func checkID(id string) error {
	if err := typeid.Validate(id, typeid.PrefixDrawing); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return nil
}

// Create stores a new drawing seeded with an empty document.
func (s *Service) Create(ctx context.Context, name string) (*Drawing, error) {
	now := time.Now().UTC()
	d := &Drawing{
		ID:        typeid.NewDrawingID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	emptyDoc := &document.Document{
		Version: document.CurrentVersion,
		Name:    name,
		Items:   []document.ItemNode{},
	}
	docJSON, err := json.Marshal(emptyDoc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}

	first := &Snapshot{
		ID:        typeid.NewSnapshotID(),
		DrawingID: d.ID,
		Document:  docJSON,
		CreatedAt: now,
	}
	if err := s.store.CreateDrawing(ctx, d, first); err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Drawing, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.store.GetDrawing(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Drawing, error) {
	drawings, err := s.store.ListDrawings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	return drawings, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.DeleteDrawing(ctx, id)
}

func (s *Service) GetLatestSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.store.LatestSnapshot(ctx, id)
}

// Save stores doc as the drawing's next snapshot.
func (s *Service) Save(ctx context.Context, id string, doc json.RawMessage, thumbnail []byte) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	snap := &Snapshot{
		ID:        typeid.NewSnapshotID(),
		DrawingID: id,
		Document:  doc,
		Thumbnail: thumbnail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// LoadDocument returns the latest document of a drawing for a realtime
// session.
func (s *Service) LoadDocument(id string) (string, error) {
	// Use a background context since this runs in the hub goroutine
	snap, err := s.GetLatestSnapshot(context.Background(), id)
	if err != nil {
		return "", err
	}
	return string(snap.Document), nil
}

// SaveDocument stores a realtime session's document as a new snapshot.
func (s *Service) SaveDocument(id, doc string, thumbnail []byte) error {
	_, err := s.Save(context.Background(), id, json.RawMessage(doc), thumbnail)
	return err
}
