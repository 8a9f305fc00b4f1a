package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/index"
	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// decodeBody decodes a JSON body into v and runs its Validate method.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{ Validate() error }) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := v.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List cached notes, newest first
//	@Tags			notes
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			filename	query		string	false	"Only notes from this document"
//	@Success		200			{object}	NoteListResponse
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	notes, total, err := h.svc.ListNotes(r.Context(), limit, offset, q.Get("filename"))
	if err != nil {
		serverError(w, "list notes failed", err)
		return
	}
	if notes == nil {
		notes = []NoteRow{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: total})
}

// GetNote handles GET /api/notes/{digest}.
//
//	@Summary		Get a single cached note by digest
//	@Tags			notes
//	@Produce		json
//	@Param			digest	path		string	true	"Note digest"
//	@Success		200		{object}	NoteRow
//	@Failure		404		{object}	errResponse
//	@Router			/notes/{digest} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	digest := chi.URLParam(r, "digest")
	note, err := h.svc.GetNote(r.Context(), digest)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			serverError(w, "get note failed", err, slog.String("digest", digest))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across cached notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		serverError(w, "search failed", err, slog.String("query", q))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// CacheStatus handles GET /api/cache.
//
//	@Summary		Describe the note snapshot
//	@Tags			cache
//	@Produce		json
//	@Success		200	{object}	CacheStatus
//	@Router			/cache [get]
func (h *Handler) CacheStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		serverError(w, "cache status failed", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Ingest handles POST /api/ingest.
//
//	@Summary		Run ingestion now
//	@Tags			cache
//	@Produce		json
//	@Success		200	{object}	ingest.Stats
//	@Failure		502	{object}	errResponse
//	@Router			/ingest [post]
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrFetch) {
			slog.Warn("ingest failed", slog.String("error", err.Error()))
			writeError(w, http.StatusBadGateway, "document store unavailable")
		} else {
			serverError(w, "ingest failed", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Classify handles POST /api/classify.
//
//	@Summary		Run text through the classification pipeline
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClassifyRequest	true	"Note content"
//	@Success		200		{object}	Classification
//	@Failure		400		{object}	errResponse
//	@Router			/classify [post]
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Classify(r.Context(), req.Content))
}

// Segment handles POST /api/segment.
//
//	@Summary		Split a misc notes document into dated records
//	@Tags			tools
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SegmentRequest	true	"Document text"
//	@Success		200		{object}	SegmentResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/segment [post]
func (h *Handler) Segment(w http.ResponseWriter, r *http.Request) {
	var req SegmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	records, err := h.svc.Segment(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, apperr.ErrParse) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		} else {
			serverError(w, "segment failed", err)
		}
		return
	}
	if records == nil {
		records = []models.NoteRecord{}
	}
	writeJSON(w, http.StatusOK, SegmentResponse{Records: records})
}
