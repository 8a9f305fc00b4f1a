package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Digest    string `json:"digest"`
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename,omitempty"`
	Content   string `json:"content"`
}

// Record returns the row as a note record.
func (r NoteRow) Record() models.NoteRecord {
	return models.NoteRecord{Timestamp: r.Timestamp, Filename: r.Filename, Content: r.Content}
}

// SearchResult represents one search hit.
type SearchResult struct {
	Digest    string `json:"digest"`
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename,omitempty"`
	Snippet   string `json:"snippet"`
}

func insertNote(tx *sql.Tx, r NoteRow) error {
	_, err := tx.Exec(`
		INSERT INTO notes (digest, timestamp, filename, content)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(digest) DO NOTHING
	`, r.Digest, r.Timestamp, r.Filename, r.Content)
	if err != nil {
		return fmt.Errorf("index: insert note: %w", err)
	}
	return ftsUpsert(tx, r.Digest, r.Filename, r.Content)
}

func deleteNote(tx *sql.Tx, digest string) error {
	ftsDelete(tx, digest)
	if _, err := tx.Exec(`DELETE FROM notes WHERE digest = ?`, digest); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return nil
}

// GetNote returns one note by digest or apperr.ErrNotFound.
func (db *DB) GetNote(digest string) (*NoteRow, error) {
	var r NoteRow
	err := db.conn.QueryRow(`SELECT digest, timestamp, filename, content FROM notes WHERE digest = ?`, digest).
		Scan(&r.Digest, &r.Timestamp, &r.Filename, &r.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	return &r, nil
}

// ListNotes returns notes ordered by timestamp, newest first, and the total
// count. A non-empty filename restricts the listing to that document.
func (db *DB) ListNotes(limit, offset int, filename string) ([]NoteRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := "", []any{}
	if filename != "" {
		where, args = "WHERE filename = ?", append(args, filename)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count notes: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT digest, timestamp, filename, content
		FROM notes `+where+`
		ORDER BY timestamp DESC, digest
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list notes: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var r NoteRow
		if err := rows.Scan(&r.Digest, &r.Timestamp, &r.Filename, &r.Content); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// AllDigests returns every indexed note digest.
func (db *DB) AllDigests() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT digest FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all digests: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out[d] = struct{}{}
	}
	return out, rows.Err()
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Digest, &r.Timestamp, &r.Filename, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
