// Package models defines the domain types for notesift.
package models

import (
	"fmt"
	"time"
)

// MiscNotesName is the default name of the free-form notes document that is
// segmented by date rather than ingested as a single record.
const MiscNotesName = "misc_inputs"

// NoteRecord is one timestamped unit of note content.
// Filename is set for whole-document records and empty for segmented ones.
type NoteRecord struct {
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename,omitempty"`
	Content   string `json:"content"`
}

// timestampLayouts are tried in order when decoding Timestamp. All but the
// first accept naive timestamps written by older snapshots; those are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses the record timestamp.
func (r NoteRecord) Time() (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, r.Timestamp); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("models: unparseable timestamp %q", r.Timestamp)
}

// Segmented reports whether the record came from the date segmenter.
func (r NoteRecord) Segmented() bool {
	return r.Filename == ""
}

// Fields returns the record as a flat field map, omitting an empty filename
// the same way the JSON encoding does.
func (r NoteRecord) Fields() map[string]any {
	m := map[string]any{
		"timestamp": r.Timestamp,
		"content":   r.Content,
	}
	if r.Filename != "" {
		m["filename"] = r.Filename
	}
	return m
}

// RecordFromFields is the inverse of Fields. Unknown keys are ignored.
func RecordFromFields(m map[string]any) NoteRecord {
	var r NoteRecord
	if v, ok := m["timestamp"].(string); ok {
		r.Timestamp = v
	}
	if v, ok := m["filename"].(string); ok {
		r.Filename = v
	}
	if v, ok := m["content"].(string); ok {
		r.Content = v
	}
	return r
}

// FormatTimestamp renders t the way records store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Document is one entry of a remote folder listing.
type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}
