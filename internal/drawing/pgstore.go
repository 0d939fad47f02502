package drawing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	drawing_id TEXT NOT NULL REFERENCES drawings(id) ON DELETE CASCADE,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	thumbnail  BYTEA,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (drawing_id, version)
);
`

// PGStore keeps drawings in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to databaseURL and creates the schema if needed.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PGStore) CreateDrawing(ctx context.Context, d *Drawing, first *Snapshot) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO drawings (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
			d.ID, d.Name, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert drawing: %w", err)
		}
		first.DrawingID = d.ID
		first.Version = 1
		return insertSnapshot(ctx, tx, first)
	})
}

func insertSnapshot(ctx context.Context, tx pgx.Tx, snap *Snapshot) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO snapshots (id, drawing_id, version, document, thumbnail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.DrawingID, snap.Version, []byte(snap.Document), snap.Thumbnail, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PGStore) GetDrawing(ctx context.Context, id string) (*Drawing, error) {
	var d Drawing
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM drawings WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return &d, nil
}

func (s *PGStore) ListDrawings(ctx context.Context) ([]Drawing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM drawings ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	drawings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Drawing, error) {
		var d Drawing
		err := row.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan drawings: %w", err)
	}
	return drawings, nil
}

func (s *PGStore) DeleteDrawing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) LatestSnapshot(ctx context.Context, drawingID string) (*Snapshot, error) {
	var snap Snapshot
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, drawing_id, version, document, thumbnail, created_at
		 FROM snapshots WHERE drawing_id = $1 ORDER BY version DESC LIMIT 1`, drawingID).
		Scan(&snap.ID, &snap.DrawingID, &snap.Version, &doc, &snap.Thumbnail, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap.Document = doc
	return &snap, nil
}

func (s *PGStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE drawings SET updated_at = $2 WHERE id = $1`, snap.DrawingID, snap.CreatedAt)
		if err != nil {
			return fmt.Errorf("touch drawing: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		// The row lock taken by the update serializes concurrent saves.
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE drawing_id = $1`, snap.DrawingID).
			Scan(&snap.Version)
		if err != nil {
			return fmt.Errorf("next version: %w", err)
		}
		return insertSnapshot(ctx, tx, snap)
	})
}
