package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/notesift/internal/cache"
	"github.com/starford/notesift/internal/index"
	"github.com/starford/notesift/internal/ingest"
	"github.com/starford/notesift/internal/metrics"
	"github.com/starford/notesift/internal/noteservice"
	"github.com/starford/notesift/internal/oracle"
	"github.com/starford/notesift/internal/pipeline"
	"github.com/starford/notesift/internal/ruminate"
	"github.com/starford/notesift/internal/sse"
	"github.com/starford/notesift/internal/storage"
)

// runtime holds the components shared by every command.
type runtime struct {
	app     *application
	logger  *slog.Logger
	store   *storage.FS
	cache   *cache.Store
	db      *index.DB
	ollama  *oracle.Ollama
	metrics *metrics.Metrics
	broker  *sse.Broker
	svc     *noteservice.Service
}

func setup(opts []Option, logOut io.Writer) (*runtime, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("store_root", cfg.Store.Root),
		slog.String("folder_id", cfg.Store.FolderID),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("oracle_model", cfg.Oracle.Model),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the store folder exists.
	if err := os.MkdirAll(filepath.Join(cfg.Store.Root, filepath.FromSlash(cfg.Store.FolderID)), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Store.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	snapshots, err := cache.NewStore(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	ollama, err := oracle.NewOllama(oracle.OllamaConfig{
		URL:       cfg.Oracle.URL,
		Model:     cfg.Oracle.Model,
		Timeout:   cfg.Oracle.Timeout,
		MaxTokens: cfg.Oracle.MaxTokens,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init oracle: %w", err)
	}

	m := metrics.New()
	var ask oracle.Oracle = m.Oracle(ollama)
	if cfg.Oracle.MemoSize > 0 {
		memo, err := oracle.NewMemo(ask, cfg.Oracle.MemoSize)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init oracle memo: %w", err)
		}
		ask = memo
	}

	driver := ingest.NewDriver(store, snapshots, ingest.Config{
		FolderID:      cfg.Store.FolderID,
		MiscName:      cfg.Ingest.MiscNotesName,
		DocumentLimit: cfg.Ingest.DocumentLimit,
		Force:         app.force,
	}, logger, m)

	broker := sse.NewBroker(2 * time.Second)

	svc := noteservice.NewService(noteservice.Deps{
		Cache:         snapshots,
		Index:         db,
		Driver:        driver,
		Pipeline:      pipeline.New(ask, pipeline.StaticLabeler(cfg.Classify.DefaultLabel), logger),
		Ruminator:     ruminate.New(ask, cfg.Ruminate.NotesPerAsk, logger),
		Events:        broker,
		Metrics:       m,
		Logger:        logger,
		ClassifyLimit: cfg.Classify.Limit,
	})

	return &runtime{
		app:     app,
		logger:  logger,
		store:   store,
		cache:   snapshots,
		db:      db,
		ollama:  ollama,
		metrics: m,
		broker:  broker,
		svc:     svc,
	}, nil
}

func (rt *runtime) Close() {
	rt.broker.Close()
	if err := rt.db.Close(); err != nil {
		rt.logger.Error("close index failed", slog.String("error", err.Error()))
	}
}
