// Package sqlite implements memory.Store on top of a pure-Go SQLite driver
// (modernc.org/sqlite, which needs no cgo), grounded on the retrieval pack's sqlitevec backend
// (internal/memory/backend/sqlitevec). It exists to exercise the
// persisted-memory-format contract in §6.5, not as a general persistence
// product (see SPEC_FULL.md's Non-goals).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, registers "sqlite"

	"github.com/agentcore/reactor/memory"
	"github.com/agentcore/reactor/step"
)

// Store persists run step sequences as a single JSON blob per run, keyed by
// run id. One row is replaced wholesale on every Save: the core's memory
// model treats a run's full step sequence as the unit of persistence (there
// is no append-in-place requirement in §6.5), so a whole-row upsert is
// simpler and sufficient.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and ensures
// its schema exists. path may be ":memory:" for an ephemeral store, useful
// in tests.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory/sqlite: open %q: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_memory (
			run_id TEXT PRIMARY KEY,
			steps_json TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("memory/sqlite: create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save implements memory.Store: it replaces runID's persisted step sequence
// wholesale with steps, encoded per §6.5's Record format.
func (s *Store) Save(ctx context.Context, runID string, steps []step.Step) error {
	data, err := memory.MarshalRecords(steps)
	if err != nil {
		return fmt.Errorf("memory/sqlite: marshal steps: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO run_memory (run_id, steps_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(run_id) DO UPDATE SET steps_json = excluded.steps_json, updated_at = CURRENT_TIMESTAMP
	`, runID, string(data))
	if err != nil {
		return fmt.Errorf("memory/sqlite: save run %q: %w", runID, err)
	}
	return nil
}

// Load implements memory.Store: it reconstructs runID's persisted step
// sequence. A run with no saved rows returns (nil, nil) rather than an
// error, matching §6.5's "Loading must accept any such sequence" contract
// for the trivially empty sequence.
func (s *Store) Load(ctx context.Context, runID string) ([]step.Step, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT steps_json FROM run_memory WHERE run_id = ?`, runID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory/sqlite: load run %q: %w", runID, err)
	}
	steps, err := memory.UnmarshalRecords([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("memory/sqlite: unmarshal run %q: %w", runID, err)
	}
	return steps, nil
}

var _ memory.Store = (*Store)(nil)
