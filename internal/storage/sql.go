package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `CREATE TABLE IF NOT EXISTS seen_attempts (
	id         TEXT PRIMARY KEY,
	snapshot   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const (
	selectSnapshot = `SELECT snapshot FROM seen_attempts WHERE id = ?`
	insertSnapshot = `INSERT INTO seen_attempts (id, snapshot) VALUES (?, ?)
ON CONFLICT (id) DO NOTHING`
)

// SQLStore keeps the seen-set in a seen_attempts table. The same statements
// run on SQLite and PostgreSQL; placeholders are rebound for the driver.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open connection. Call EnsureSchema before first use.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the seen_attempts table if it is missing
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating seen_attempts table: %w", err)
	}
	return nil
}

// Get implements Store
func (s *SQLStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	var snapshot string
	err := s.db.GetContext(ctx, &snapshot, s.db.Rebind(selectSnapshot), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("selecting snapshot %q: %w", id, err)
	}
	return []byte(snapshot), true, nil
}

// Put implements Store
func (s *SQLStore) Put(ctx context.Context, id string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertSnapshot), id, string(value)); err != nil {
		return fmt.Errorf("storing snapshot %q: %w", id, err)
	}
	return nil
}

// Close implements Store
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
