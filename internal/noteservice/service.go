// Package noteservice is the query surface consumed by the site generator,
// the dev server and the MCP tools.
package noteservice

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/content"
	"github.com/starford/tilog/internal/index"
	"github.com/starford/tilog/internal/metrics"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteid"
	"github.com/starford/tilog/internal/pagination"
	"github.com/starford/tilog/internal/parser"
	"github.com/starford/tilog/internal/storage"
)

// Reporter performs a full, uncached directory scan.
type Reporter interface {
	FetchAll(ctx context.Context) (*models.FetchResult, error)
}

// Invalidator drops cached scan results.
type Invalidator interface {
	Invalidate() error
}

// TagCount is a tag with the number of notes that carry it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Listing is one page of the newest-first note list.
type Listing struct {
	pagination.Page[models.ParsedNote]
	TotalPages int `json:"total_pages"`
	TotalNotes int `json:"total_notes"`
}

// ParseFailure is a valid file whose metadata block could not be parsed.
type ParseFailure struct {
	Filename string `json:"filename"`
	ID       string `json:"id"`
	Error    string `json:"error"`
}

// Report describes the health of the notes directory.
type Report struct {
	Directory     string              `json:"directory"`
	Notes         int                 `json:"notes"`
	Errors        []models.FetchError `json:"errors"`
	ParseFailures []ParseFailure      `json:"parse_failures"`
}

// OK reports whether every note file was accepted.
func (r *Report) OK() bool {
	return len(r.Errors) == 0 && len(r.ParseFailures) == 0
}

// Service answers queries over the parsed notes.
type Service struct {
	source   content.Source
	reporter Reporter
	idx      index.NoteIndex
	writer   storage.Provider
	now      func() time.Time
	pageSize int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithReporter sets the scanner used by Report.
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithIndex enables indexed search.
func WithIndex(idx index.NoteIndex) Option {
	return func(s *Service) { s.idx = idx }
}

// WithWriter enables CreateNote, writing new notes to w.
func WithWriter(w storage.Provider) Option {
	return func(s *Service) { s.writer = w }
}

// WithPageSize sets the number of notes per listing page.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service reading notes from source.
func NewService(source content.Source, opts ...Option) *Service {
	s := &Service{
		source:   source,
		now:      time.Now,
		pageSize: pagination.DefaultPageSize,
		logger:   slog.Default(),
		metrics:  metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize returns the number of notes per listing page.
func (s *Service) PageSize() int { return s.pageSize }

// AllNotes returns every parseable note, newest first. Notes whose metadata
// block fails to parse are logged and left out.
func (s *Service) AllNotes(ctx context.Context) ([]models.ParsedNote, error) {
	raw, err := s.source.FetchValid(ctx)
	if err != nil {
		return nil, err
	}
	notes, failures := parser.ParseEach(raw)
	for _, f := range failures {
		s.metrics.ParseFailuresTotal.Inc()
		s.logger.Warn("notes: dropped unparseable note",
			slog.String("filename", f.Filename),
			slog.String("error", f.Error()))
	}
	slices.SortStableFunc(notes, func(a, b models.ParsedNote) int {
		return noteid.Compare(b.ID, a.ID)
	})
	return notes, nil
}

// Note returns the note with identifier id, matched case-insensitively.
func (s *Service) Note(ctx context.Context, id string) (*models.ParsedNote, error) {
	notes, err := s.AllNotes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if strings.EqualFold(notes[i].ID, id) {
			return &notes[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// NotesByTag returns the notes carrying tag exactly, newest first.
func (s *Service) NotesByTag(ctx context.Context, tag string) ([]models.ParsedNote, error) {
	notes, err := s.AllNotes(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.ParsedNote{}
	for _, n := range notes {
		if slices.Contains(n.Tags, tag) {
			out = append(out, n)
		}
	}
	return out, nil
}

// AllTags returns every tag with its note count, most used first. Tags with
// equal counts keep the order in which they first appear.
func (s *Service) AllTags(ctx context.Context) ([]TagCount, error) {
	notes, err := s.AllNotes(ctx)
	if err != nil {
		return nil, err
	}
	return countTags(notes), nil
}

// Page returns listing page number.
func (s *Service) Page(ctx context.Context, number int) (Listing, error) {
	notes, err := s.AllNotes(ctx)
	if err != nil {
		return Listing{}, err
	}
	return Listing{
		Page:       pagination.Paginate(notes, number, s.pageSize),
		TotalPages: pagination.TotalPages(len(notes), s.pageSize),
		TotalNotes: len(notes),
	}, nil
}

// Search looks up notes through the index, or by substring over titles,
// tags and bodies when no index is configured.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.idx != nil {
		return s.idx.Search(query, limit)
	}
	notes, err := s.AllNotes(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(query)
	out := []index.SearchResult{}
	for _, n := range notes {
		if len(out) == limit {
			break
		}
		if matches(n, q) {
			out = append(out, index.SearchResult{ID: n.ID, Title: n.Title, Snippet: snippet(n.Content)})
		}
	}
	return out, nil
}

// SyncIndex brings the search index up to date with the current notes.
func (s *Service) SyncIndex(ctx context.Context) (index.SyncStats, error) {
	if s.idx == nil {
		return index.SyncStats{}, nil
	}
	notes, err := s.AllNotes(ctx)
	if err != nil {
		return index.SyncStats{}, err
	}
	return index.Sync(s.idx, notes, s.logger)
}

// Report scans the directory without the cache and parses every valid note.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	if s.reporter == nil {
		return nil, errors.New("noteservice: no reporter configured")
	}
	res, err := s.reporter.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	notes, failures := parser.ParseEach(res.Success)
	r := &Report{
		Notes:         len(notes),
		Errors:        res.Errors,
		ParseFailures: make([]ParseFailure, 0, len(failures)),
	}
	if d, ok := s.reporter.(interface{ Directory() string }); ok {
		r.Directory = d.Directory()
	}
	for _, f := range failures {
		r.ParseFailures = append(r.ParseFailures, ParseFailure{Filename: f.Filename, ID: f.ID, Error: f.Error()})
	}
	return r, nil
}

// CreateNote writes a new note named after a fresh identifier for the
// current time. The document is checked with the same rules as fetched notes
// before anything is written.
func (s *Service) CreateNote(ctx context.Context, title string, tags []string, body string) (*models.ParsedNote, error) {
	if s.writer == nil {
		return nil, errors.New("noteservice: no writer configured")
	}
	id, err := noteid.New(s.now(), rand.Reader)
	if err != nil {
		return nil, err
	}
	doc, err := content.Scaffold(title, tags, body)
	if err != nil {
		return nil, err
	}
	raw := models.RawNote{Filename: id + models.NoteExt, Content: doc, ID: id}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	note, err := parser.ParseFile(raw)
	if err != nil {
		return nil, err
	}
	if err := s.writer.Write(raw.Filename, []byte(doc)); err != nil {
		return nil, fmt.Errorf("noteservice: write %s: %w", raw.Filename, err)
	}
	if err := s.InvalidateCache(); err != nil {
		s.logger.Warn("notes: invalidate after create failed", slog.String("error", err.Error()))
	}
	if _, err := s.SyncIndex(ctx); err != nil {
		s.logger.Warn("notes: index sync after create failed", slog.String("error", err.Error()))
	}
	s.logger.Info("notes: created", slog.String("id", id), slog.String("title", title))
	return note, nil
}

// InvalidateCache drops cached scan results so the next query rescans.
func (s *Service) InvalidateCache() error {
	if inv, ok := s.source.(Invalidator); ok {
		return inv.Invalidate()
	}
	return nil
}

func countTags(notes []models.ParsedNote) []TagCount {
	var out []TagCount
	pos := map[string]int{}
	for _, n := range notes {
		for _, tag := range n.Tags {
			if i, ok := pos[tag]; ok {
				out[i].Count++
				continue
			}
			pos[tag] = len(out)
			out = append(out, TagCount{Tag: tag, Count: 1})
		}
	}
	if out == nil {
		return []TagCount{}
	}
	slices.SortStableFunc(out, func(a, b TagCount) int { return b.Count - a.Count })
	return out
}

func matches(n models.ParsedNote, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func snippet(body string) string {
	r := []rune(body)
	if len(r) > 200 {
		return string(r[:200])
	}
	return body
}
