package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/tilog/internal/mcpserver"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/site"
	"github.com/starford/tilog/internal/storage"
)

// ErrCheckFailed is returned by Check when any note file was rejected.
var ErrCheckFailed = errors.New("notes check failed")

// Build generates the static site into the configured output directory.
// An inaccessible notes directory fails the build; individual bad notes are
// logged and skipped.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	p, err := newPipeline(cfg, logger, false)
	if err != nil {
		return err
	}
	defer p.close()

	out, err := storage.NewFS(cfg.Site.OutputDir)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}
	gen, err := site.New(p.svc, out, site.Config{
		Title:    cfg.Site.Title,
		BasePath: cfg.Site.BasePath,
	}, logger)
	if err != nil {
		return fmt.Errorf("init site: %w", err)
	}

	if _, err := gen.Build(ctx); err != nil {
		return fmt.Errorf("build site: %w", err)
	}
	return nil
}

// Check scans the notes directory without the cache, prints the report as
// JSON and fails when any file was rejected.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	p, err := newPipeline(app.config, logger, false)
	if err != nil {
		return err
	}
	defer p.close()

	report, err := p.svc.Report(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if !report.OK() {
		return fmt.Errorf("%w: %d rejected files, %d unparseable notes",
			ErrCheckFailed, len(report.Errors), len(report.ParseFailures))
	}
	return nil
}

// NewNote writes a new note into the notes directory and prints its filename.
func NewNote(ctx context.Context, title string, tags []string, body string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	p, err := newPipeline(app.config, logger, false)
	if err != nil {
		return err
	}
	defer p.close()

	note, err := p.svc.CreateNote(ctx, title, tags, body)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	_, err = fmt.Fprintln(app.out, note.ID+models.NoteExt)
	return err
}

// ServeMCP serves the note tools over stdio until stdin closes. Logs must not
// go to stdout, which carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	p, err := newPipeline(app.config, logger, true)
	if err != nil {
		return err
	}
	defer p.close()

	if _, err := p.svc.SyncIndex(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(p.svc, app.version).ServeStdio()
}
