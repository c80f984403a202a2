package store

import (
	"fmt"
	"time"

	"github.com/ademuri/streaming-history/internal/genre"
)

// Load returns every cached artist with its tags.
func (s *Store) Load() (genre.Genres, error) {
	g := genre.Genres{}

	rows, err := s.db.Query("SELECT name FROM Artist")
	if err != nil {
		return nil, fmt.Errorf("%w: querying artists: %v", genre.ErrCorruptCache, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning artist: %v", genre.ErrCorruptCache, err)
		}
		g[name] = []string{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", genre.ErrCorruptCache, err)
	}

	tagRows, err := s.db.Query("SELECT artist, tag FROM ArtistTag ORDER BY artist, position")
	if err != nil {
		return nil, fmt.Errorf("%w: querying tags: %v", genre.ErrCorruptCache, err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var artist, tag string
		if err := tagRows.Scan(&artist, &tag); err != nil {
			return nil, fmt.Errorf("%w: scanning tag: %v", genre.ErrCorruptCache, err)
		}
		g[artist] = append(g[artist], tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", genre.ErrCorruptCache, err)
	}
	return g, nil
}

// Save replaces the cached artists with g in a single transaction.
func (s *Store) Save(g genre.Genres) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", genre.ErrPersist, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ArtistTag"); err != nil {
		return fmt.Errorf("%w: clearing tags: %v", genre.ErrPersist, err)
	}
	if _, err := tx.Exec("DELETE FROM Artist"); err != nil {
		return fmt.Errorf("%w: clearing artists: %v", genre.ErrPersist, err)
	}

	now := time.Now()
	for artist, tags := range g {
		if _, err := tx.Exec("INSERT INTO Artist (name, tags_last_updated) VALUES (?, ?)", artist, now); err != nil {
			return fmt.Errorf("%w: inserting artist %q: %v", genre.ErrPersist, artist, err)
		}
		for i, tag := range tags {
			if _, err := tx.Exec("INSERT OR IGNORE INTO Tag (name) VALUES (?)", tag); err != nil {
				return fmt.Errorf("%w: inserting tag %q: %v", genre.ErrPersist, tag, err)
			}
			_, err := tx.Exec("INSERT INTO ArtistTag (artist, tag, position) VALUES (?, ?, ?)", artist, tag, i)
			if err != nil {
				return fmt.Errorf("%w: linking tag %q to artist %q: %v", genre.ErrPersist, tag, artist, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", genre.ErrPersist, err)
	}
	return nil
}
