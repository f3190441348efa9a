package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SqliteStore keeps every slot as one row of a single SQLite database.
//
// Tables:
//
//	slots(name, data)  PRIMARY KEY (name)
//
// Each Save is a single upsert statement, which SQLite applies atomically.
type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Load(slot string, v any) error {
	var raw string
	err := s.db.QueryRow("SELECT data FROM slots WHERE name = ?", slot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return decode(slot, []byte(raw), v)
}

func (s *SqliteStore) Save(slot string, v any) error {
	b, err := encode(slot, v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO slots (name, data) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
		slot, string(b),
	)
	if err != nil {
		return &WriteError{Slot: slot, Err: err}
	}
	return nil
}
