package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefaultDocumentName is the row the bot reads and writes.
const DefaultDocumentName = "states"

// DocumentBackend stores the occupancy document as one row. Each write is a
// single upsert statement, so readers see either the old or the new body.
type DocumentBackend struct {
	db   *sql.DB
	name string
}

// NewDocumentBackend returns a backend for the row called name.
func NewDocumentBackend(db *sql.DB, name string) *DocumentBackend {
	if name == "" {
		name = DefaultDocumentName
	}
	return &DocumentBackend{db: db, name: name}
}

func (b *DocumentBackend) Exists(ctx context.Context) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx, `SELECT 1 FROM occupancy_documents WHERE name=$1`, b.name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query document: %w", err)
	}
	return true, nil
}

func (b *DocumentBackend) ReadDocument(ctx context.Context) ([]byte, error) {
	var body string
	if err := b.db.QueryRowContext(ctx, `SELECT body FROM occupancy_documents WHERE name=$1`, b.name).Scan(&body); err != nil {
		return nil, fmt.Errorf("read document %q: %w", b.name, err)
	}
	return []byte(body), nil
}

func (b *DocumentBackend) WriteDocument(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `INSERT INTO occupancy_documents (name, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body=EXCLUDED.body, updated_at=NOW()`, b.name, string(data))
	if err != nil {
		return fmt.Errorf("write document %q: %w", b.name, err)
	}
	return nil
}
