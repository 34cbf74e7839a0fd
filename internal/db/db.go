package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with confchat-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
// The (session_key, id) primary key on chat_messages is load-bearing:
// background completions append with deterministic IDs and rely on the
// key for idempotence.
const schema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
    key TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS chat_messages (
    session_key TEXT NOT NULL REFERENCES chat_sessions(key) ON DELETE CASCADE,
    id TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role IN ('user','assistant')),
    parts TEXT NOT NULL DEFAULT '[]',
    seq INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY(session_key, id)
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_key, seq);

CREATE TABLE IF NOT EXISTS profiles (
    session_key TEXT PRIMARY KEY REFERENCES chat_sessions(key) ON DELETE CASCADE,
    subject TEXT NOT NULL,
    topics TEXT NOT NULL DEFAULT '[]',
    summary TEXT NOT NULL DEFAULT '',
    items_analyzed INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`
