// Package storage keeps a local history of dictation sessions in
// SQLite, for the stats endpoints and the web dashboard.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the session database under the given directory, creating
// the schema if needed.
func Open(dir string) (*DB, error) {
	return OpenFile(filepath.Join(dir, "voxtype.db"))
}

// OpenFile is Open with an explicit database path.
func OpenFile(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps the web handlers from blocking the dictation loop.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		recording_ms INTEGER NOT NULL,
		transcription_ms INTEGER NOT NULL,
		injection_ms INTEGER NOT NULL,

		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		language TEXT NOT NULL,

		text TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		char_count INTEGER NOT NULL,

		success BOOLEAN NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_sessions_success ON sessions(success);
	`

	_, err := db.conn.Exec(schema)
	return err
}
