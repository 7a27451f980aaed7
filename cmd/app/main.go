package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/tilog/internal"
	"github.com/starford/tilog/internal/content"
	pkgconfig "github.com/starford/tilog/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if out := cmd.String("output"); out != "" {
		cfg.Site.OutputDir = out
	}
	return internal.Build(ctx, internal.WithConfig(cfg))
}

func check(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Check(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func newNote(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.NewNote(ctx,
		cmd.String("title"),
		content.SplitTags(cmd.String("tags")),
		cmd.String("body"),
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version),
	)
}

func main() {
	cmd := &cli.Command{
		Name:    "tilog",
		Usage:   "Today I Learned knowledge log: static site generator, dev server and MCP tools",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when it does not exist)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the development server with live reload",
				Action: serve,
			},
			{
				Name:  "build",
				Usage: "Generate the static site",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory, overrides site.output_dir",
					},
				},
				Action: build,
			},
			{
				Name:   "check",
				Usage:  "Validate every note file and print a report",
				Action: check,
			},
			{
				Name:  "new",
				Usage: "Create a note named after a fresh identifier",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title", Required: true},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
					&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "Markdown body"},
				},
				Action: newNote,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the note tools over stdio for MCP clients",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
