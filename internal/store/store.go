// Package store persists levels, editor sessions and the action journal in a
// per-workspace SQLite database, and the global config as JSON.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const dbFileName = "lightline.sqlite"

var ErrNotFound = errors.New("not found")

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	Name string
}

func (e NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.Name) }

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

type Store struct {
	Dir string
}

func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspace"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), dbFileName)
}

// EnvPath is the optional .env file of the workspace.
func (s Store) EnvPath() string {
	return filepath.Join(filepath.Clean(s.Dir), ".env")
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return nil, errors.New("store dir is empty")
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	// WAL allows one writer and many readers across the CLI, TUI and preview server.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS levels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			json TEXT NOT NULL,
			hash TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history_meta (
			level_id TEXT PRIMARY KEY REFERENCES levels(id) ON DELETE CASCADE,
			level_json TEXT NOT NULL,
			buffer_json TEXT NOT NULL,
			buffer_label_json TEXT NOT NULL,
			editor_json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history_entries (
			level_id TEXT NOT NULL REFERENCES levels(id) ON DELETE CASCADE,
			stack TEXT NOT NULL,
			seq INTEGER NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY(level_id, stack, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			level TEXT NOT NULL,
			action TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			changed INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_level ON journal(level, created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
