package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const collectionsSchema = `CREATE TABLE IF NOT EXISTS board_collections (
	name TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps each collection as one JSONB row.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore constructs the store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the backing table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, collectionsSchema); err != nil {
		return fmt.Errorf("migrate board_collections: %w", err)
	}
	return nil
}

// Load reads the payload row for key.
func (s *PostgresStore) Load(ctx context.Context, key string, dest interface{}) error {
	var payload []byte
	if err := s.db.GetContext(ctx, &payload, "SELECT payload FROM board_collections WHERE name = $1", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCollectionMissing
		}
		return fmt.Errorf("load collection %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// Save upserts the payload row for key.
func (s *PostgresStore) Save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	const query = `INSERT INTO board_collections (name, payload, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	return nil
}

// Delete removes the payload row for key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM board_collections WHERE name = $1", key); err != nil {
		return fmt.Errorf("delete collection %s: %w", key, err)
	}
	return nil
}
