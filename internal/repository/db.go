package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (creating if absent) the SQLite database file at path.
// WAL mode plus a busy timeout lets concurrent request handlers and the
// purge task share the file without stepping on each other.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema creates the credential tables if they do not exist yet. It
// runs before the server accepts any traffic.
func InitSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL UNIQUE,
	hashwd           TEXT NOT NULL,
	email            TEXT NOT NULL,
	registration_key TEXT,
	createdate       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tokens (
	token     TEXT NOT NULL PRIMARY KEY,
	user      INTEGER NOT NULL REFERENCES users(id),
	tokendate INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tokens_tokendate ON tokens(tokendate);
`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}
