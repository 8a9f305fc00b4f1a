package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/models"
)

// MIME types reported for listed documents.
const (
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
)

var mimeByExt = map[string]string{
	".txt": MimeText,
	".md":  MimeMarkdown,
}

// FS implements Provider backed by a local directory tree. Folder ids are
// directories relative to the root and document ids are file paths relative
// to the root, always with forward slashes.
type FS struct {
	root string // absolute path to the store directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute store directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the store root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes store root: %s", rel)
	}
	return abs, nil
}

// List returns the text documents directly inside folderID, sorted by id.
func (f *FS) List(ctx context.Context, folderID string) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &apperr.FetchError{Op: "list", ID: folderID, Err: err}
	}
	dir, err := f.safePath(folderID)
	if err != nil {
		return nil, &apperr.FetchError{Op: "list", ID: folderID, Err: err}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &apperr.FetchError{Op: "list", ID: folderID, Err: err}
	}
	var out []models.Document
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		mime, ok := mimeByExt[ext]
		if !ok {
			continue
		}
		out = append(out, models.Document{
			ID:       path.Join(filepath.ToSlash(folderID), e.Name()),
			Name:     strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			MimeType: mime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Read returns the text content of a document.
func (f *FS) Read(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &apperr.FetchError{Op: "read", ID: id, Err: err}
	}
	abs, err := f.safePath(id)
	if err != nil {
		return "", &apperr.FetchError{Op: "read", ID: id, Err: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", &apperr.FetchError{Op: "read", ID: id, Err: err}
	}
	return string(data), nil
}

// ModTime returns the file modification time in UTC.
func (f *FS) ModTime(ctx context.Context, id string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, &apperr.FetchError{Op: "modtime", ID: id, Err: err}
	}
	abs, err := f.safePath(id)
	if err != nil {
		return time.Time{}, &apperr.FetchError{Op: "modtime", ID: id, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, &apperr.FetchError{Op: "modtime", ID: id, Err: err}
	}
	return info.ModTime().UTC(), nil
}

// Create writes a new <name>.txt document into folderID. It refuses to
// overwrite an existing document.
func (f *FS) Create(ctx context.Context, folderID, name, content string) (string, error) {
	id := path.Join(filepath.ToSlash(folderID), name+".txt")
	if err := ctx.Err(); err != nil {
		return "", &apperr.FetchError{Op: "create", ID: id, Err: err}
	}
	abs, err := f.safePath(id)
	if err != nil {
		return "", &apperr.FetchError{Op: "create", ID: id, Err: err}
	}
	if _, err := os.Stat(abs); err == nil {
		return "", &apperr.FetchError{Op: "create", ID: id, Err: os.ErrExist}
	}
	if err := WriteAtomic(abs, []byte(content)); err != nil {
		return "", &apperr.FetchError{Op: "create", ID: id, Err: err}
	}
	return id, nil
}

// WriteAtomic writes content to path: tmp file → fsync → rename. Readers
// see either the old file or the new one, never a partial write.
func WriteAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".notesift-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
