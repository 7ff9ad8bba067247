package database

import (
	"database/sql"
	"fmt"
)

// Schema for one show database.  Cells reference songs and columns with ON
// DELETE CASCADE so removing either parent removes the dependent cells at
// the store layer.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS mics (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		number  INTEGER NOT NULL UNIQUE,
		name    TEXT NOT NULL DEFAULT '',
		x       REAL NOT NULL DEFAULT 400,
		y       REAL NOT NULL DEFAULT 300
	)`,
	`CREATE TABLE IF NOT EXISTS stage_elements (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		kind     TEXT NOT NULL,
		label    TEXT NOT NULL DEFAULT '',
		x        REAL NOT NULL DEFAULT 400,
		y        REAL NOT NULL DEFAULT 300,
		width    REAL NOT NULL DEFAULT 0,
		height   REAL NOT NULL DEFAULT 0,
		rotation REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS zones (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		name   TEXT NOT NULL DEFAULT '',
		color  TEXT NOT NULL DEFAULT '#6B9FFF',
		x      REAL NOT NULL DEFAULT 200,
		y      REAL NOT NULL DEFAULT 200,
		width  REAL NOT NULL DEFAULT 200,
		height REAL NOT NULL DEFAULT 150
	)`,
	`CREATE TABLE IF NOT EXISTS columns (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		key        TEXT NOT NULL UNIQUE,
		label      TEXT NOT NULL,
		type       TEXT NOT NULL CHECK(type IN ('mic','text')),
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_default INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL DEFAULT '',
		artist     TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS cells (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		song_id   INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
		column_id INTEGER NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
		value     TEXT NOT NULL DEFAULT '',
		UNIQUE(song_id, column_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notification_presets (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		label      TEXT NOT NULL,
		emoji      TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '#6B9FFF',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,
}

// defaultColumns are seeded once per show and can never be deleted.
var defaultColumns = []struct {
	key, label, typ string
}{
	{"microphones", "Microphones", "mic"},
	{"monitor", "Monitor", "mic"},
	{"notes", "Notes", "text"},
}

func initSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return seedDefaultColumns(db)
}

func seedDefaultColumns(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM columns`).Scan(&count); err != nil {
		return fmt.Errorf("count columns: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, c := range defaultColumns {
		if _, err := db.Exec(
			`INSERT INTO columns (key, label, type, sort_order, is_default) VALUES (?, ?, ?, ?, 1)`,
			c.key, c.label, c.typ, i,
		); err != nil {
			return fmt.Errorf("seed default columns: %w", err)
		}
	}
	return nil
}
