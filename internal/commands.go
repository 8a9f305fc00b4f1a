package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/notesift/internal/mcpserver"
)

// RunIngest runs one ingestion pass and re-syncs the search index.
func RunIngest(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := rt.svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	rt.logger.Info("Ingest finished",
		slog.String("run_id", stats.RunID),
		slog.Int("processed", stats.Processed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed),
		slog.Int("new_records", stats.NewRecords),
		slog.Int("total", stats.Total))
	return nil
}

// RunClassify classifies cached notes and logs each outcome.
func RunClassify(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.svc.ClassifyCached(ctx, rt.app.limit)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	counts := make(map[string]int)
	for _, c := range results {
		counts[c.State]++
	}
	rt.logger.Info("Classify finished", slog.Int("notes", len(results)), slog.Any("states", counts))
	return nil
}

// RunRuminate infers projects from the cached notes and prints them as JSON.
func RunRuminate(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	projects, err := rt.svc.Ruminate(ctx)
	if err != nil {
		return fmt.Errorf("ruminate: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(projects)
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.svc.Reindex(ctx); err != nil {
		rt.logger.Warn("initial reindex failed", slog.String("error", err.Error()))
	}

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, rt.app.version).ServeStdio()
}
