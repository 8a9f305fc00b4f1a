package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notesift/internal"
	pkgconfig "github.com/starford/notesift/pkg/config"
)

var version = "dev"

type runner func(ctx context.Context, opts ...internal.Option) error

func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func action(run runner, extra func(cmd *cli.Command) []internal.Option) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		if extra != nil {
			opts = append(opts, extra(cmd)...)
		}
		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "notesift",
		Usage:   "Ingest notes from a document store, cache them and triage them with a local LLM",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "Fetch changed documents and rebuild the note snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-read every document regardless of modification time",
					},
				},
				Action: action(internal.RunIngest, func(cmd *cli.Command) []internal.Option {
					return []internal.Option{internal.WithForce(cmd.Bool("force"))}
				}),
			},
			{
				Name:  "classify",
				Usage: "Run cached notes through the classification pipeline",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum notes to classify (0 uses classify.limit from config)",
					},
				},
				Action: action(internal.RunClassify, func(cmd *cli.Command) []internal.Option {
					return []internal.Option{internal.WithLimit(int(cmd.Int("limit")))}
				}),
			},
			{
				Name:   "ruminate",
				Usage:  "Infer ongoing projects from cached notes",
				Action: action(internal.RunRuminate, nil),
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and rebuild the snapshot when the store changes",
				Action: action(internal.Run, nil),
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: action(internal.RunMCP, nil),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
