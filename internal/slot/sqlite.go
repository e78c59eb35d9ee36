package slot

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores all slots in a single table of a SQLite database file.
// Useful when the data directory should hold exactly one artifact.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) slots.db under dir.
func NewSQLite(dir string) (*SQLite, error) {
	if dir == "" {
		dir = "./var/studycal"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "slots.db"))
	if err != nil {
		return nil, err
	}

	const schema = `CREATE TABLE IF NOT EXISTS slots (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Read(key string) ([]byte, bool, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return nil, false, err
	}
	var value []byte
	err = s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, k).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLite) Write(key string, value []byte) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		k, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLite) Delete(key string) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM slots WHERE key = ?`, k)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }
