//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			digest UNINDEXED,
			filename,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, digest, filename, content string) error {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE digest = ?`, digest)
	_, err := tx.Exec(`INSERT INTO notes_fts (digest, filename, content) VALUES (?, ?, ?)`,
		digest, filename, content)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, digest string) {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE digest = ?`, digest)
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT notes_fts.digest,
		       n.timestamp,
		       n.filename,
		       snippet(notes_fts, 2, '<b>', '</b>', '...', 64)
		FROM notes_fts
		JOIN notes n ON n.digest = notes_fts.digest
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
