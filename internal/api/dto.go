package api

import (
	"github.com/starford/notesift/internal/index"
	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/noteservice"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// ClassifyRequest is the request body for classifying free text.
type ClassifyRequest struct {
	Content string `json:"content" example:"test again with the button" validate:"required"`
}

// Validate validates the classify request.
func (r ClassifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, maxBodyBytes)),
	)
}

// SegmentRequest is the request body for segmenting a misc notes document.
type SegmentRequest struct {
	Text string `json:"text" example:"21/06/2024\nWho is Mike?"`
}

// Validate validates the segment request. Empty text is valid and yields
// no records.
func (r SegmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Length(0, maxBodyBytes)),
	)
}

// NoteRow is an indexed note (aliased from the index layer).
type NoteRow = index.NoteRow

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteRow `json:"notes" validate:"required"`
	Total int       `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// SegmentResponse wraps segmented records.
type SegmentResponse struct {
	Records []models.NoteRecord `json:"records" validate:"required"`
}

// Classification is one pipeline outcome (aliased from the domain layer).
type Classification = noteservice.Classification

// CacheStatus describes the snapshot (aliased from the domain layer).
type CacheStatus = noteservice.CacheStatus
