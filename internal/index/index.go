package index

import "github.com/starford/notesift/internal/models"

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	Sync(records []models.NoteRecord) (SyncStats, error)
	GetNote(digest string) (*NoteRow, error)
	ListNotes(limit, offset int, filename string) ([]NoteRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllDigests() (map[string]struct{}, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
