package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS manga (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	description TEXT,
	cover_image TEXT,
	artist      TEXT,
	language    TEXT,
	genre       TEXT,
	status      TEXT,
	publisher   TEXT,
	year        INTEGER,
	rating      REAL,
	read_count  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chapters (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	manga_id       INTEGER NOT NULL REFERENCES manga(id) ON DELETE CASCADE,
	title          TEXT NOT NULL,
	chapter_number INTEGER NOT NULL,
	release_date   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	is_public      INTEGER NOT NULL DEFAULT 1,
	pages          TEXT NOT NULL DEFAULT '[]',
	UNIQUE (manga_id, chapter_number)
);

CREATE TABLE IF NOT EXISTS categories (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS manga_categories (
	manga_id    INTEGER NOT NULL REFERENCES manga(id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (manga_id, category_id)
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 1,
	is_admin      INTEGER NOT NULL DEFAULT 0,
	token_version INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chapters_manga ON chapters(manga_id);
CREATE INDEX IF NOT EXISTS idx_chapters_release ON chapters(release_date);
`

// Migrate applies the embedded schema. Every statement is idempotent so it
// can run on each startup and against :memory: databases in tests.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
