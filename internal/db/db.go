package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// dueLayout is the stored form of due timestamps (local wall clock, no zone)
const dueLayout = "2006-01-02 15:04:05"

// DB wraps the database connection
type DB struct {
	*sql.DB

	// strictAssignees rejects group task assignees who are not group members
	strictAssignees bool
}

// Open opens the database at path and initializes the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// One active connection: sqlite serializes writers anyway and an
	// in-memory database only lives as long as its connection.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, classify(err)
	}

	return &DB{DB: conn}, nil
}

// SetStrictAssignees toggles group membership validation for assignees
func (db *DB) SetStrictAssignees(strict bool) {
	db.strictAssignees = strict
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic
func (db *DB) withTx(fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return classify(err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, classify(err)
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return classify(err)
}

func formatDue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.In(time.Local).Format(dueLayout)
}

func parseDue(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dueLayout, s.String, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse due_at %q: %w", s.String, err)
	}
	return &t, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}
