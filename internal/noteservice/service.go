// Package noteservice coordinates the cache, index, ingestion driver and
// classification pipeline behind one API shared by the CLI, HTTP and MCP
// surfaces.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/cache"
	"github.com/starford/notesift/internal/index"
	"github.com/starford/notesift/internal/ingest"
	"github.com/starford/notesift/internal/metrics"
	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/pipeline"
	"github.com/starford/notesift/internal/ruminate"
	"github.com/starford/notesift/internal/segment"
	"github.com/starford/notesift/internal/sse"
)

// Events receives run and classification notifications. *sse.Broker
// satisfies it.
type Events interface {
	Publish(event sse.Event)
	PublishClassified(state, timestamp, filename string)
}

// Classification is the outcome of one pipeline run in response form.
type Classification struct {
	Timestamp string   `json:"timestamp,omitempty"`
	Filename  string   `json:"filename,omitempty"`
	State     string   `json:"state"`
	Label     string   `json:"label,omitempty"`
	Questions []string `json:"questions,omitempty"`
	Trace     string   `json:"trace"`
}

// CacheStatus describes the on-disk snapshot.
type CacheStatus struct {
	Path      string    `json:"path"`
	Records   int       `json:"records"`
	WrittenAt time.Time `json:"written_at"`
	Bootstrap bool      `json:"bootstrap"`
	Due       bool      `json:"due"`
	Corrupted bool      `json:"corrupted,omitempty"`
}

// Deps holds the collaborators of a Service. Index, Driver, Ruminator,
// Events and Metrics are optional.
type Deps struct {
	Cache     *cache.Store
	Index     index.NoteIndex
	Driver    *ingest.Driver
	Pipeline  *pipeline.Pipeline
	Ruminator *ruminate.Ruminator
	Events    Events
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	// ClassifyLimit caps ClassifyCached when the caller passes no limit.
	ClassifyLimit int
}

// Service coordinates snapshot, index and pipeline operations.
type Service struct {
	deps Deps
	// mu serialises ingestion runs.
	mu sync.Mutex
}

// ErrUnavailable is returned when an operation needs an optional dependency
// that was not configured.
var ErrUnavailable = errors.New("noteservice: not configured")

// NewService creates a new note service.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{deps: d}
}

// ListNotes returns indexed notes, newest first.
func (s *Service) ListNotes(_ context.Context, limit, offset int, filename string) ([]index.NoteRow, int, error) {
	if s.deps.Index == nil {
		return nil, 0, ErrUnavailable
	}
	return s.deps.Index.ListNotes(limit, offset, filename)
}

// GetNote returns one indexed note by digest.
func (s *Service) GetNote(_ context.Context, digest string) (*index.NoteRow, error) {
	if s.deps.Index == nil {
		return nil, ErrUnavailable
	}
	return s.deps.Index.GetNote(digest)
}

// Search runs a full-text query over indexed notes.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.deps.Index == nil {
		return nil, ErrUnavailable
	}
	return s.deps.Index.Search(query, limit)
}

// Segment splits free-form text into dated records.
func (s *Service) Segment(_ context.Context, text string) ([]models.NoteRecord, error) {
	return segment.Split(text)
}

// Classify runs content through the pipeline.
func (s *Service) Classify(ctx context.Context, content string) Classification {
	res, trace := s.deps.Pipeline.Run(ctx, content)
	c := toClassification(models.NoteRecord{Content: content}, res, trace)
	s.deps.Metrics.Classification(c.State)
	return c
}

// ClassifyCached classifies the cached notes in snapshot order. limit <= 0
// falls back to the configured limit; zero there means all notes.
func (s *Service) ClassifyCached(ctx context.Context, limit int) ([]Classification, error) {
	snap, err := s.deps.Cache.Load()
	if err != nil {
		return nil, fmt.Errorf("noteservice: load cache: %w", err)
	}
	if limit <= 0 {
		limit = s.deps.ClassifyLimit
	}

	var out []Classification
	s.deps.Pipeline.Batch(ctx, snap.Records, limit, func(o pipeline.Outcome) {
		c := toClassification(o.Note, o.Result, o.Trace)
		s.deps.Metrics.Classification(c.State)
		if s.deps.Events != nil {
			s.deps.Events.PublishClassified(c.State, c.Timestamp, c.Filename)
		}
		s.logOutcome(c, o.Note)
		out = append(out, c)
	})
	return out, ctx.Err()
}

func (s *Service) logOutcome(c Classification, note models.NoteRecord) {
	attrs := []any{
		slog.String("state", c.State),
		slog.String("timestamp", note.Timestamp),
		slog.String("trace", c.Trace),
	}
	if note.Filename != "" {
		attrs = append(attrs, slog.String("filename", note.Filename))
	}
	switch c.State {
	case string(pipeline.StateDelete):
		// Deletion is advisory only; the remote document is left in place.
		s.deps.Logger.Info("classify: would delete test note", attrs...)
	case string(pipeline.StateClassified):
		s.deps.Logger.Info("classify: classified", append(attrs, slog.String("label", c.Label))...)
	case string(pipeline.StateAskQuestions):
		s.deps.Logger.Info("classify: follow-up questions", append(attrs, slog.Any("questions", c.Questions))...)
	default:
		s.deps.Logger.Info("classify: needs review", attrs...)
	}
}

func toClassification(note models.NoteRecord, res pipeline.Result, trace pipeline.Trace) Classification {
	c := Classification{
		Timestamp: note.Timestamp,
		Filename:  note.Filename,
		State:     string(res.State()),
		Trace:     trace.String(),
	}
	switch r := res.(type) {
	case pipeline.Classified:
		c.Label = r.Label
	case pipeline.AskQuestions:
		c.Questions = r.Questions
	}
	return c
}

// Refresh runs ingestion, re-syncs the index from the snapshot and
// publishes ingest.completed. Concurrent calls run one after another.
func (s *Service) Refresh(ctx context.Context) (ingest.Stats, error) {
	if s.deps.Driver == nil {
		return ingest.Stats{}, ErrUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.deps.Driver.Run(ctx)
	if err != nil {
		return stats, err
	}
	if s.deps.Index != nil {
		if _, err := s.Reindex(ctx); err != nil {
			s.deps.Logger.Warn("refresh: reindex failed", slog.String("error", err.Error()))
		}
	}
	if s.deps.Events != nil {
		s.deps.Events.Publish(sse.Event{Type: sse.EventIngestCompleted, Data: stats})
	}
	return stats, nil
}

// Due reports whether a scheduled ingestion run should happen now.
func (s *Service) Due(now time.Time) bool {
	if s.deps.Driver == nil {
		return false
	}
	return s.deps.Driver.Due(now)
}

// Reindex loads the snapshot and syncs the search index with it.
func (s *Service) Reindex(_ context.Context) (index.SyncStats, error) {
	if s.deps.Index == nil {
		return index.SyncStats{}, ErrUnavailable
	}
	snap, err := s.deps.Cache.Load()
	if err != nil {
		return index.SyncStats{}, fmt.Errorf("noteservice: load cache: %w", err)
	}
	stats, err := s.deps.Index.Sync(snap.Records)
	if err != nil {
		return stats, err
	}
	s.deps.Logger.Debug("index synced",
		slog.Int("added", stats.Added),
		slog.Int("removed", stats.Removed),
		slog.Int("total", stats.Total))
	return stats, nil
}

// Status describes the snapshot. A missing snapshot is created empty.
func (s *Service) Status(_ context.Context) (CacheStatus, error) {
	st := CacheStatus{Path: s.deps.Cache.Path()}
	snap, err := s.deps.Cache.Load()
	if err != nil {
		if !errors.Is(err, apperr.ErrCacheCorruption) {
			return st, err
		}
		st.Corrupted, st.Due = true, true
		if written, werr := s.deps.Cache.WrittenAt(); werr == nil {
			st.WrittenAt = written
		}
		return st, nil
	}
	st.Records = len(snap.Records)
	st.WrittenAt = snap.WrittenAt
	st.Bootstrap = snap.Bootstrap
	st.Due = snap.Bootstrap || cache.ShouldRebuild(time.Now(), snap.WrittenAt)
	return st, nil
}

// Ruminate infers projects from the cached notes.
func (s *Service) Ruminate(ctx context.Context) ([]ruminate.Project, error) {
	if s.deps.Ruminator == nil {
		return nil, ErrUnavailable
	}
	snap, err := s.deps.Cache.Load()
	if err != nil {
		return nil, fmt.Errorf("noteservice: load cache: %w", err)
	}
	s.deps.Logger.Info("ruminate: loaded notes", slog.Int("records", len(snap.Records)))
	return s.deps.Ruminator.Projects(ctx, snap.Records)
}
