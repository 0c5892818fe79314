package worldstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"colonyworld/internal/world"
)

// SqliteStore keeps the world record in a one-row sqlite table. The upsert is
// a single statement, so read-then-write atomicity per record holds without
// explicit transactions.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (and if needed initializes) the database at path.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS world_state (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating world_state table: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Load(ctx context.Context) (*world.State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM world_state WHERE id = ?`, recordID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading world state row: %w", err)
	}

	state, err := decodeState([]byte(payload))
	if err != nil {
		slog.Warn("discarding malformed world state row", "error", err)
		return nil, nil
	}
	return state, nil
}

func (s *SqliteStore) Save(ctx context.Context, state *world.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO world_state (id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		recordID, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting world state row: %w", err)
	}
	return nil
}

func (s *SqliteStore) Mode() string {
	return "sqlite"
}

// Close releases the underlying database handle.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}
