// Package storage implements the PostgreSQL persistence layer: users
// with their embedded subscription state, admins, the plan catalog,
// payments and the media library.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	// Register the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Storage wraps the database connection and implements all entity
// repositories.
type Storage struct {
	DB *sql.DB
}

// New opens a connection to PostgreSQL and verifies it.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping checks database liveness for the health endpoint.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// marshalJSON encodes a value for a jsonb column, mapping nil slices
// to empty arrays so scans stay symmetric.
func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

func unmarshalJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}
