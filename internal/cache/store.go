// Package cache persists the note snapshot and decides when it is stale.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kaptinlin/jsonschema"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/storage"
)

// Snapshot is the decoded contents of the cache file.
type Snapshot struct {
	Records   []models.NoteRecord
	WrittenAt time.Time
	// Bootstrap is set when the snapshot was absent or empty and every
	// remote document must be treated as stale.
	Bootstrap bool
}

// Store reads and writes the snapshot file at a fixed path.
type Store struct {
	path   string
	schema *jsonschema.Schema
}

// NewStore returns a Store for the snapshot at path. The file need not exist.
func NewStore(path string) (*Store, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Store{path: path, schema: schema}, nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is created empty. A file that is
// not a valid record array yields *apperr.CacheCorruptionError.
func (s *Store) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.Reset(); err != nil {
			return Snapshot{}, err
		}
		written, err := s.WrittenAt()
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{WrittenAt: written, Bootstrap: true}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("cache: read: %w", err)
	}

	written, err := s.WrittenAt()
	if err != nil {
		return Snapshot{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{WrittenAt: written, Bootstrap: true}, nil
	}

	if !json.Valid(data) {
		return Snapshot{}, &apperr.CacheCorruptionError{Path: s.path, Err: errors.New("invalid json")}
	}
	if err := validateSnapshot(s.schema, data); err != nil {
		return Snapshot{}, &apperr.CacheCorruptionError{Path: s.path, Err: err}
	}
	var records []models.NoteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return Snapshot{}, &apperr.CacheCorruptionError{Path: s.path, Err: err}
	}
	for i, r := range records {
		if _, err := r.Time(); err != nil {
			return Snapshot{}, &apperr.CacheCorruptionError{Path: s.path, Err: fmt.Errorf("record %d: %w", i, err)}
		}
	}
	return Snapshot{
		Records:   records,
		WrittenAt: written,
		Bootstrap: len(records) == 0,
	}, nil
}

// Reset replaces the snapshot with an empty array.
func (s *Store) Reset() error {
	if err := storage.WriteAtomic(s.path, []byte("[]")); err != nil {
		return fmt.Errorf("cache: reset: %w", err)
	}
	return nil
}

// Save writes records as the new snapshot in a single atomic replace and
// returns the new write time.
func (s *Store) Save(records []models.NoteRecord) (time.Time, error) {
	if records == nil {
		records = []models.NoteRecord{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: marshal: %w", err)
	}
	if err := storage.WriteAtomic(s.path, data); err != nil {
		return time.Time{}, fmt.Errorf("cache: save: %w", err)
	}
	return s.WrittenAt()
}

// Backdate sets the snapshot write time to t so that documents modified
// after t count as stale on the next run.
func (s *Store) Backdate(t time.Time) error {
	if err := os.Chtimes(s.path, t, t); err != nil {
		return fmt.Errorf("cache: backdate: %w", err)
	}
	return nil
}

// WrittenAt returns the snapshot file's modification time.
func (s *Store) WrittenAt() (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: stat: %w", err)
	}
	return info.ModTime().UTC(), nil
}
