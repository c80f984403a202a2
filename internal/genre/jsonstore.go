package genre

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// JSONStore keeps the cache as a single JSON document mapping artist names to
// tag arrays.
type JSONStore struct {
	fs   afero.Fs
	path string
}

// NewJSONStore returns a store for the document at path.
func NewJSONStore(fs afero.Fs, path string) *JSONStore {
	return &JSONStore{fs: fs, path: path}
}

func (s *JSONStore) Load() (Genres, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return Genres{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var g Genres
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, s.path, err)
	}
	if g == nil {
		// The document was a bare null.
		return nil, fmt.Errorf("%w: %s: not an object", ErrCorruptCache, s.path)
	}
	for name, tags := range g {
		if tags == nil {
			g[name] = []string{}
		}
	}
	return g, nil
}

// Save writes g to a temporary file next to the cache and renames it into
// place, so a failed write never leaves a truncated cache behind.
func (s *JSONStore) Save(g Genres) error {
	out := make(Genres, len(g))
	for name, tags := range g {
		if tags == nil {
			tags = []string{}
		}
		out[name] = tags
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrPersist, err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrPersist, dir, err)
	}
	tmp, err := afero.TempFile(s.fs, dir, ".genre_cache-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", ErrPersist, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %v", ErrPersist, tmpName, err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("%w: renaming into %s: %v", ErrPersist, s.path, err)
	}
	return nil
}
