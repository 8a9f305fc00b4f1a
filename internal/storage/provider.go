// Package storage defines the remote document store the notes are ingested from.
package storage

import (
	"context"
	"time"

	"github.com/starford/notesift/internal/models"
)

// Provider is the interface for remote document store operations.
// Every failure is returned as *apperr.FetchError.
type Provider interface {
	// List returns the documents directly inside folderID.
	List(ctx context.Context, folderID string) ([]models.Document, error)
	// Read returns the text content of the document.
	Read(ctx context.Context, id string) (string, error)
	// ModTime returns the document's last-modified time.
	ModTime(ctx context.Context, id string) (time.Time, error)
	// Create writes a new text document named name into folderID and returns its id.
	Create(ctx context.Context, folderID, name, content string) (string, error)
}
