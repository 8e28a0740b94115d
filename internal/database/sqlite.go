package database

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// SQLite implements Store on a single sqlite table
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens (and creates if needed) the sqlite database at dbPath
func NewSQLite(dbPath string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer keeps ":memory:" databases on a single connection too.
	conn.SetMaxOpenConns(1)

	db := &SQLite{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	log.WithField("path", dbPath).Info("Database initialized")
	return db, nil
}

// Close closes the database connection
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.conn.Exec(createTableSQL)
	return err
}

// Put inserts or overwrites the value stored under key
func (db *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value),
	)
	return err
}

// Get returns the value stored under key
func (db *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := db.conn.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// List returns every entry whose key starts with prefix
func (db *SQLite) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT key, value FROM kv WHERE substr(key, 1, length(?)) = ?",
		prefix, prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: []byte(value)})
	}
	return entries, rows.Err()
}

// Delete removes key. Deleting a missing key is not an error.
func (db *SQLite) Delete(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}
