// Package site generates the static site: paginated index, archive, tag
// pages and one page per note.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteid"
	"github.com/starford/tilog/internal/noteservice"
	"github.com/starford/tilog/internal/pagination"
	"github.com/starford/tilog/internal/slug"
	"github.com/starford/tilog/internal/storage"
)

// DefaultConcurrency bounds the number of pages rendered at once.
const DefaultConcurrency = 8

// Notes is the query surface the generator reads from.
type Notes interface {
	AllNotes(ctx context.Context) ([]models.ParsedNote, error)
	AllTags(ctx context.Context) ([]noteservice.TagCount, error)
	PageSize() int
}

// Config holds the site settings.
type Config struct {
	Title       string
	BasePath    string
	Concurrency int
}

// Stats counts the files written by Build.
type Stats struct {
	Notes int `json:"notes"`
	Pages int `json:"pages"`
	Tags  int `json:"tags"`
	Files int `json:"files"`
}

// Generator renders pages into an output store.
type Generator struct {
	notes  Notes
	out    storage.Provider
	cfg    Config
	md     goldmark.Markdown
	tmpl   map[string]*template.Template
	logger *slog.Logger
}

// New creates a generator writing into out.
func New(notes Notes, out storage.Provider, cfg Config, logger *slog.Logger) (*Generator, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	return &Generator{notes: notes, out: out, cfg: cfg, md: newMarkdown(), tmpl: tmpl, logger: logger}, nil
}

type tagLink struct {
	Name  string
	Slug  string
	Count int
}

type noteView struct {
	ID    string
	Path  string
	Title string
	Date  string
	Day   string
	Tags  []tagLink
	HTML  template.HTML
}

type pager struct {
	Number int
	Total  int
	Prev   string
	Next   string
}

type pageData struct {
	Site    string
	Base    string
	Heading string
	Notes   []noteView
	Tags    []tagLink
	Note    *noteView
	Pager   *pager
}

type job struct {
	file string
	tmpl string
	data pageData
}

// Build renders every page. Routes:
//   - index.html is listing page 1, page/<n>/index.html for n = 2..total
//   - archive/index.html lists every note
//   - tags/index.html and tags/<slug>/index.html
//   - <lowercase id>/index.html per note
func (g *Generator) Build(ctx context.Context) (Stats, error) {
	notes, err := g.notes.AllNotes(ctx)
	if err != nil {
		return Stats{}, err
	}
	tags, err := g.notes.AllTags(ctx)
	if err != nil {
		return Stats{}, err
	}

	views := make([]noteView, len(notes))
	for i, n := range notes {
		v, err := g.view(n)
		if err != nil {
			return Stats{}, fmt.Errorf("site: note %s: %w", n.ID, err)
		}
		views[i] = v
	}

	jobs := g.listingJobs(views)
	pages := len(jobs)
	archive := g.data("Archive")
	archive.Notes = views
	jobs = append(jobs, job{file: "archive/index.html", tmpl: "archive", data: archive})
	jobs = append(jobs, g.tagJobs(views, tags)...)

	for i := range views {
		d := g.data(views[i].Title)
		d.Note = &views[i]
		jobs = append(jobs, job{file: views[i].Path + "/index.html", tmpl: "note", data: d})
	}

	var written atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for _, j := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := g.write(j); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Notes: len(views),
		Pages: pages,
		Tags:  len(tags),
		Files: int(written.Load()),
	}
	g.logger.Info("site: built",
		slog.String("output", g.out.Root()),
		slog.Int("notes", stats.Notes),
		slog.Int("pages", stats.Pages),
		slog.Int("tags", stats.Tags),
		slog.Int("files", stats.Files))
	return stats, nil
}

// listingJobs renders the paginated index. An empty site still gets page 1.
func (g *Generator) listingJobs(views []noteView) []job {
	size := g.notes.PageSize()
	total := max(pagination.TotalPages(len(views), size), 1)
	out := make([]job, 0, total)
	for n := 1; n <= total; n++ {
		p := pagination.Paginate(views, n, size)
		d := g.data("")
		if n > 1 {
			d.Heading = "Page " + strconv.Itoa(n)
		}
		d.Notes = p.Items
		d.Pager = &pager{Number: n, Total: total}
		if n > 1 {
			d.Pager.Prev = g.listingURL(n - 1)
		}
		if n < total {
			d.Pager.Next = g.listingURL(n + 1)
		}
		out = append(out, job{file: listingFile(n), tmpl: "index", data: d})
	}
	return out
}

func (g *Generator) tagJobs(views []noteView, tags []noteservice.TagCount) []job {
	index := g.data("Tags")
	out := make([]job, 0, len(tags)+1)
	for _, t := range tags {
		link := tagLink{Name: t.Tag, Slug: slug.TagToSlug(t.Tag), Count: t.Count}
		index.Tags = append(index.Tags, link)

		d := g.data(t.Tag)
		for _, v := range views {
			if hasTag(v, t.Tag) {
				d.Notes = append(d.Notes, v)
			}
		}
		out = append(out, job{file: path.Join("tags", link.Slug, "index.html"), tmpl: "tag", data: d})
	}
	return append(out, job{file: "tags/index.html", tmpl: "tags", data: index})
}

func (g *Generator) view(n models.ParsedNote) (noteView, error) {
	html, err := renderBody(g.md, n.Content)
	if err != nil {
		return noteView{}, err
	}
	v := noteView{
		ID:    n.ID,
		Path:  NotePath(n.ID),
		Title: n.Title,
		Date:  noteid.ISO(n.Metadata.Date),
		Day:   n.Metadata.Date.Format("2006-01-02"),
		HTML:  html,
	}
	for _, t := range n.Tags {
		v.Tags = append(v.Tags, tagLink{Name: t, Slug: slug.TagToSlug(t)})
	}
	return v, nil
}

func (g *Generator) data(heading string) pageData {
	return pageData{Site: g.cfg.Title, Base: g.cfg.BasePath, Heading: heading}
}

func (g *Generator) write(j job) error {
	var buf bytes.Buffer
	if err := g.tmpl[j.tmpl].ExecuteTemplate(&buf, "layout", j.data); err != nil {
		return fmt.Errorf("site: render %s: %w", j.file, err)
	}
	if err := g.out.Write(j.file, buf.Bytes()); err != nil {
		return fmt.Errorf("site: write %s: %w", j.file, err)
	}
	return nil
}

func (g *Generator) listingURL(n int) string {
	if n == 1 {
		return g.cfg.BasePath + "/"
	}
	return g.cfg.BasePath + "/page/" + strconv.Itoa(n) + "/"
}

func listingFile(n int) string {
	if n == 1 {
		return "index.html"
	}
	return path.Join("page", strconv.Itoa(n), "index.html")
}

// NotePath returns the URL segment of a note: its lower-cased identifier.
func NotePath(id string) string {
	return strings.ToLower(id)
}

func hasTag(v noteView, tag string) bool {
	for _, t := range v.Tags {
		if t.Name == tag {
			return true
		}
	}
	return false
}
