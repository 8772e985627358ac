package kvstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	sqliteFile           = "timesheet.db"
	sqliteCurrentVersion = 1

	querySelectValue = `SELECT value FROM kv WHERE key = ?`
	queryUpsertValue = `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	queryDeleteValue = `DELETE FROM kv WHERE key = ?`
)

// SQLite keeps every key as a row of a single table, which gives the
// multi-key SetMany a real transaction.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) <dir>/timesheet.db and runs migrations.
func NewSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return openSQLite(filepath.Join(dir, sqliteFile))
}

// NewSQLiteMemory creates an in-memory store for testing.
func NewSQLiteMemory() (*SQLite, error) {
	return openSQLite(":memory:")
}

func openSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= sqliteCurrentVersion {
		return nil
	}
	if version < 1 {
		const ddl = `CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteCurrentVersion))
	return err
}

func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(querySelectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key string, value []byte) error {
	if _, err := s.db.Exec(queryUpsertValue, key, value); err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrWrite, key, err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec(queryDeleteValue, key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrWrite, key, err)
	}
	return nil
}

// SetMany writes all values in one transaction.
func (s *SQLite) SetMany(values map[string][]byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrWrite, err)
	}
	for k, v := range values {
		if _, err := tx.Exec(queryUpsertValue, k, v); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: upsert %s: %v", ErrWrite, k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrWrite, err)
	}
	return nil
}
