// Package ingest builds the note snapshot from the remote document store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/cache"
	"github.com/starford/notesift/internal/dedup"
	"github.com/starford/notesift/internal/frontmatter"
	"github.com/starford/notesift/internal/metrics"
	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/segment"
	"github.com/starford/notesift/internal/storage"
)

// MiscPlaceholder is written to a newly created misc notes document.
const MiscPlaceholder = "Misc Notes go in this file if you don't have the app - use \nDD/MM/YYYY dates for separators\n\n"

// Config controls one Driver.
type Config struct {
	FolderID string
	// MiscName is the document name that is segmented by date.
	MiscName string
	// DocumentLimit caps the stale documents fetched per run. The misc notes
	// document is exempt. 0 means no limit.
	DocumentLimit int
	// Force treats every document as stale.
	Force bool
}

// Stats summarises one run.
type Stats struct {
	RunID      string    `json:"run_id"`
	Listed     int       `json:"listed"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Deferred   int       `json:"deferred"`
	NewRecords int       `json:"new_records"`
	Total      int       `json:"total"`
	Saved      bool      `json:"saved"`
	Bootstrap  bool      `json:"bootstrap"`
	WrittenAt  time.Time `json:"written_at"`
}

// Driver runs ingestion. Runs are sequential; callers must not invoke Run
// concurrently on one Driver.
type Driver struct {
	store   storage.Provider
	cache   *cache.Store
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewDriver creates a Driver. m may be nil.
func NewDriver(store storage.Provider, c *cache.Store, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Driver {
	if cfg.MiscName == "" {
		cfg.MiscName = models.MiscNotesName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{store: store, cache: c, cfg: cfg, logger: logger, metrics: m}
}

// Run fetches stale documents, merges their records into the snapshot and
// saves it once if anything new was found.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	stats, err := d.run(ctx)
	d.metrics.IngestRun(err)
	return stats, err
}

func (d *Driver) run(ctx context.Context) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	logger := d.logger.With(slog.String("run_id", stats.RunID))

	snap, err := d.loadSnapshot(logger)
	if err != nil {
		return stats, err
	}
	stats.Bootstrap = snap.Bootstrap
	stats.WrittenAt = snap.WrittenAt

	docs, err := d.store.List(ctx, d.cfg.FolderID)
	if err != nil {
		return stats, fmt.Errorf("ingest: list: %w", err)
	}
	stats.Listed = len(docs)

	if !hasDocument(docs, d.cfg.MiscName) {
		id, err := d.store.Create(ctx, d.cfg.FolderID, d.cfg.MiscName, MiscPlaceholder)
		if err != nil {
			logger.Warn("ingest: create misc notes failed", slog.String("error", err.Error()))
		} else {
			logger.Info("ingest: created misc notes", slog.String("id", id))
		}
	}

	candidates, err := d.staleDocuments(ctx, logger, docs, snap, &stats)
	if err != nil {
		return stats, err
	}

	var (
		fresh          []models.NoteRecord
		fetched        int
		oldestDeferred time.Time
	)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		misc := c.doc.Name == d.cfg.MiscName
		if !misc && d.cfg.DocumentLimit > 0 && fetched >= d.cfg.DocumentLimit {
			if stats.Deferred == 0 || c.modified.Before(oldestDeferred) {
				oldestDeferred = c.modified
			}
			stats.Deferred++
			d.metrics.Document(string(outcomeDeferred))
			continue
		}
		if !misc {
			fetched++
		}
		records, outcome := d.fetch(ctx, logger, c.doc, c.modified)
		if outcome == outcomeProcessed {
			stats.Processed++
		} else {
			stats.Failed++
		}
		d.metrics.Document(string(outcome))
		fresh = append(fresh, records...)
	}
	if stats.Deferred > 0 {
		logger.Info("ingest: document limit reached",
			slog.Int("limit", d.cfg.DocumentLimit),
			slog.Int("deferred", stats.Deferred))
	}
	stats.NewRecords = len(fresh)
	d.metrics.NewRecords(len(fresh))

	if len(fresh) == 0 {
		stats.Total = len(snap.Records)
		logger.Info("ingest: nothing new", slog.Int("listed", stats.Listed), slog.Int("skipped", stats.Skipped))
		return stats, nil
	}

	merged := dedup.Notes(append(snap.Records, fresh...), "timestamp")
	written, err := d.cache.Save(merged)
	if err != nil {
		return stats, fmt.Errorf("ingest: %w", err)
	}
	// Deferred documents must still look stale next run.
	if stats.Deferred > 0 {
		written = oldestDeferred.Add(-time.Nanosecond)
		if err := d.cache.Backdate(written); err != nil {
			return stats, fmt.Errorf("ingest: %w", err)
		}
	}
	stats.Saved = true
	stats.Total = len(merged)
	stats.WrittenAt = written

	logger.Info("ingest: snapshot saved",
		slog.Int("processed", stats.Processed),
		slog.Int("new_records", stats.NewRecords),
		slog.Int("total", stats.Total),
	)
	return stats, nil
}

func (d *Driver) loadSnapshot(logger *slog.Logger) (cache.Snapshot, error) {
	snap, err := d.cache.Load()
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, apperr.ErrCacheCorruption) {
		return cache.Snapshot{}, fmt.Errorf("ingest: %w", err)
	}
	logger.Warn("ingest: snapshot corrupted, rebuilding", slog.String("error", err.Error()))
	if err := d.cache.Reset(); err != nil {
		return cache.Snapshot{}, fmt.Errorf("ingest: %w", err)
	}
	written, err := d.cache.WrittenAt()
	if err != nil {
		return cache.Snapshot{}, fmt.Errorf("ingest: %w", err)
	}
	return cache.Snapshot{WrittenAt: written, Bootstrap: true}, nil
}

type outcome string

const (
	outcomeProcessed outcome = "processed"
	outcomeSkipped   outcome = "skipped"
	outcomeFailed    outcome = "failed"
	outcomeDeferred  outcome = "deferred"
)

type candidate struct {
	doc      models.Document
	modified time.Time
}

// staleDocuments returns the documents that need fetching, oldest first, so
// that a document limit always leaves the newest ones for the next run.
// Skipped and failed documents are counted in stats.
func (d *Driver) staleDocuments(ctx context.Context, logger *slog.Logger, docs []models.Document, snap cache.Snapshot, stats *Stats) ([]candidate, error) {
	var out []candidate
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		modified, err := d.store.ModTime(ctx, doc.ID)
		if err != nil {
			logger.Warn("ingest: modtime failed", slog.String("id", doc.ID), slog.String("error", err.Error()))
			stats.Failed++
			d.metrics.Document(string(outcomeFailed))
			continue
		}
		if !snap.Bootstrap && !d.cfg.Force && !cache.IsStale(modified, snap.WrittenAt) {
			stats.Skipped++
			d.metrics.Document(string(outcomeSkipped))
			continue
		}
		out = append(out, candidate{doc: doc, modified: modified})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].modified.Before(out[j].modified) })
	return out, nil
}

// fetch returns the records contributed by one stale document.
func (d *Driver) fetch(ctx context.Context, logger *slog.Logger, doc models.Document, modified time.Time) ([]models.NoteRecord, outcome) {
	log := logger.With(slog.String("id", doc.ID))

	content, err := d.store.Read(ctx, doc.ID)
	if err != nil {
		log.Warn("ingest: read failed", slog.String("error", err.Error()))
		return nil, outcomeFailed
	}

	timestamp := modified
	if doc.MimeType == storage.MimeMarkdown {
		if h, body, ok := frontmatter.Split(content); ok {
			content = body
			if created, ok := h.CreatedAt(); ok {
				timestamp = created
			}
		}
	}

	if doc.Name == d.cfg.MiscName {
		records, err := segment.Split(content)
		if err != nil {
			log.Error("ingest: segment failed", slog.String("error", err.Error()))
			return nil, outcomeFailed
		}
		log.Debug("ingest: segmented", slog.Int("records", len(records)))
		return records, outcomeProcessed
	}

	return []models.NoteRecord{{
		Timestamp: models.FormatTimestamp(timestamp),
		Filename:  doc.Name,
		Content:   content,
	}}, outcomeProcessed
}

// Due reports whether a scheduled run should happen at now: the snapshot
// is missing, empty, unreadable or at least a day old.
func (d *Driver) Due(now time.Time) bool {
	snap, err := d.cache.Load()
	if err != nil || snap.Bootstrap {
		return true
	}
	return cache.ShouldRebuild(now, snap.WrittenAt)
}

func hasDocument(docs []models.Document, name string) bool {
	for _, doc := range docs {
		if doc.Name == name {
			return true
		}
	}
	return false
}
