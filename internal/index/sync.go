package index

import (
	"fmt"

	"github.com/starford/notesift/internal/dedup"
	"github.com/starford/notesift/internal/models"
)

// SyncStats reports what one Sync changed.
type SyncStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}

// Sync brings the index in line with records in one transaction:
//   - records not yet indexed are inserted
//   - indexed notes absent from records are removed
func (db *DB) Sync(records []models.NoteRecord) (SyncStats, error) {
	existing, err := db.AllDigests()
	if err != nil {
		return SyncStats{}, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return SyncStats{}, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var stats SyncStats
	keep := make(map[string]struct{}, len(records))
	for _, r := range records {
		digest, err := dedup.Digest(r.Fields())
		if err != nil {
			return SyncStats{}, fmt.Errorf("index: digest: %w", err)
		}
		if _, dup := keep[digest]; dup {
			continue
		}
		keep[digest] = struct{}{}
		if _, ok := existing[digest]; ok {
			continue
		}
		row := NoteRow{Digest: digest, Timestamp: r.Timestamp, Filename: r.Filename, Content: r.Content}
		if err := insertNote(tx, row); err != nil {
			return SyncStats{}, err
		}
		stats.Added++
	}

	for d := range existing {
		if _, ok := keep[d]; ok {
			continue
		}
		if err := deleteNote(tx, d); err != nil {
			return SyncStats{}, err
		}
		stats.Removed++
	}

	if err := tx.Commit(); err != nil {
		return SyncStats{}, fmt.Errorf("index: commit: %w", err)
	}
	stats.Total = len(keep)
	return stats, nil
}
