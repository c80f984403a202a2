// Package store keeps the genre cache in a SQLite database.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ademuri/streaming-history/internal/genre"
)

const schema = `
CREATE TABLE IF NOT EXISTS Artist (
  name TEXT PRIMARY KEY,
  tags_last_updated DATETIME
);

CREATE TABLE IF NOT EXISTS Tag (
  name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS ArtistTag (
  artist TEXT,
  tag TEXT,
  position INTEGER,
  FOREIGN KEY (artist) REFERENCES Artist(name),
  FOREIGN KEY (tag) REFERENCES Tag(name),
  PRIMARY KEY (artist, position)
);
`

// Store is a genre.Store backed by SQLite. Every looked-up artist has a row
// in Artist; its tags, if any, are rows in ArtistTag ordered by position.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath, creating it and its tables if needed.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", genre.ErrCorruptCache, dbPath, err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", genre.ErrCorruptCache, dbPath, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// ensureSchema upgrades databases created before tags were ranked.
func ensureSchema(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "ArtistTag", "position", "INTEGER"); err != nil {
		return err
	}
	return addColumnIfNotExists(db, "Artist", "tags_last_updated", "DATETIME")
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
