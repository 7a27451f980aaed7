// Package content discovers note files, validates them, and serves the
// results through a build-time cache shared between processes.
package content

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/tilog/internal/metrics"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/storage"
)

// DefaultConcurrency bounds the number of files read at once.
const DefaultConcurrency = 16

// Source yields the valid raw notes of a notes directory.
type Source interface {
	FetchValid(ctx context.Context) ([]models.RawNote, error)
}

// Fetcher scans a notes directory.
type Fetcher struct {
	store       storage.Provider
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithConcurrency sets how many files are read in parallel.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-file failures.
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher reading from store.
func NewFetcher(store storage.Provider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		store:       store,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
		metrics:     metrics.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Directory returns the notes directory being scanned.
func (f *Fetcher) Directory() string {
	return f.store.Root()
}

// ListNoteFiles returns the note file names in the directory, in listing order.
func (f *Fetcher) ListNoteFiles(_ context.Context) ([]string, error) {
	names, err := f.store.List()
	if err != nil {
		return nil, &DirectoryAccessError{Dir: f.store.Root(), Err: err}
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if filepath.Ext(name) == models.NoteExt {
			out = append(out, name)
		}
	}
	return out, nil
}

// ReadAndValidate reads one note file and checks its structure. It returns a
// *ReadError when the file cannot be read and a *models.ValidationError when
// it breaks a rule.
func (f *Fetcher) ReadAndValidate(_ context.Context, filename string) (models.RawNote, error) {
	data, err := f.store.Read(filename)
	if err != nil {
		return models.RawNote{}, &ReadError{Filename: filename, Err: err}
	}
	note := models.RawNote{
		Filename: filename,
		Content:  string(data),
		ID:       strings.TrimSuffix(filename, models.NoteExt),
	}
	if err := note.Validate(); err != nil {
		return models.RawNote{}, err
	}
	return note, nil
}

// FetchAll reads every note file. Per-file failures are collected in the
// result; only a directory failure or cancellation aborts the scan.
func (f *Fetcher) FetchAll(ctx context.Context) (*models.FetchResult, error) {
	files, err := f.ListNoteFiles(ctx)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		note models.RawNote
		err  error
	}
	outcomes := make([]outcome, len(files))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].err = err
				return nil
			}
			note, err := f.ReadAndValidate(ctx, name)
			outcomes[i] = outcome{note: note, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &models.FetchResult{
		Success: make([]models.RawNote, 0, len(files)),
		Errors:  []models.FetchError{},
	}
	for i, o := range outcomes {
		if o.err == nil {
			res.Success = append(res.Success, o.note)
			continue
		}
		kind := classify(o.err)
		f.metrics.FetchErrorsTotal.WithLabelValues(string(kind)).Inc()
		f.logger.Warn("fetch: skipped note",
			slog.String("filename", files[i]),
			slog.String("kind", string(kind)),
			slog.String("error", o.err.Error()))
		res.Errors = append(res.Errors, models.FetchError{
			Filename: files[i],
			Error:    o.err.Error(),
			Kind:     kind,
		})
	}
	return res, nil
}

// FetchValid returns only the notes that passed validation.
func (f *Fetcher) FetchValid(ctx context.Context) ([]models.RawNote, error) {
	res, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return res.Success, nil
}

func classify(err error) models.ErrorKind {
	var readErr *ReadError
	if errors.As(err, &readErr) {
		return models.KindReadError
	}
	return models.KindValidationError
}
