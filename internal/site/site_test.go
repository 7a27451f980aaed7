package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/tilog/internal/content"
	"github.com/starford/tilog/internal/noteservice"
	"github.com/starford/tilog/internal/storage"
	"github.com/starford/tilog/internal/testutil"
)

var ids = []string{
	"01HZX0000000000000000000AA",
	"01HZX1000000000000000000AA",
	"01J000000000000000000000ZZ",
}

func build(t *testing.T, pageSize int, seed func(dir string)) (string, Stats) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dir, store := testutil.TestNotes(t)
	seed(dir)
	svc := noteservice.NewService(content.NewFetcher(store, content.WithLogger(logger)),
		noteservice.WithPageSize(pageSize),
		noteservice.WithLogger(logger))

	outDir := t.TempDir()
	out, err := storage.NewFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	gen, err := New(svc, out, Config{Title: "TIL", BasePath: "/til/"}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stats, err := gen.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return outDir, stats
}

func readPage(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		t.Fatalf("missing page %s: %v", name, err)
	}
	return string(data)
}

func TestBuild_Routes(t *testing.T) {
	out, stats := build(t, 2, func(dir string) {
		testutil.WriteNote(t, dir, ids[0]+".md", "---\ntitle: First\ntags: [go]\n---\n# Heading\n\nSome *text*.\n")
		testutil.WriteNote(t, dir, ids[1]+".md", testutil.Note("Second", "go", "中文"))
		testutil.WriteNote(t, dir, ids[2]+".md", testutil.Note("Third"))
	})

	if stats.Notes != 3 || stats.Pages != 2 || stats.Tags != 2 {
		t.Errorf("stats = %+v", stats)
	}
	// 2 listing pages, archive, 2 tag pages, tag index, 3 notes.
	if stats.Files != 9 {
		t.Errorf("files = %d, want 9", stats.Files)
	}

	index := readPage(t, out, "index.html")
	if !strings.Contains(index, "Third") || !strings.Contains(index, "Second") || strings.Contains(index, ">First<") {
		t.Errorf("page 1 should hold the two newest notes:\n%s", index)
	}
	if !strings.Contains(index, `href="/til/page/2/"`) {
		t.Errorf("page 1 missing link to page 2:\n%s", index)
	}

	page2 := readPage(t, out, "page/2/index.html")
	if !strings.Contains(page2, "First") || !strings.Contains(page2, `href="/til/"`) {
		t.Errorf("page 2:\n%s", page2)
	}
	if _, err := os.Stat(filepath.Join(out, "page/1/index.html")); !os.IsNotExist(err) {
		t.Error("page 1 must only exist as index.html")
	}

	note := readPage(t, out, strings.ToLower(ids[0])+"/index.html")
	if !strings.Contains(note, `<h1 id="heading">Heading</h1>`) || !strings.Contains(note, "<em>text</em>") {
		t.Errorf("note body not rendered:\n%s", note)
	}
	if !strings.Contains(note, `datetime="2024-06-08T22:37:35.104Z"`) {
		t.Errorf("note date missing:\n%s", note)
	}

	tag := readPage(t, out, "tags/b64_5Lit5paH/index.html")
	if !strings.Contains(tag, "Second") || strings.Contains(tag, "Third") {
		t.Errorf("tag page:\n%s", tag)
	}
	tags := readPage(t, out, "tags/index.html")
	if strings.Index(tags, ">go<") > strings.Index(tags, ">中文<") {
		t.Errorf("tags not ordered by count:\n%s", tags)
	}

	archive := readPage(t, out, "archive/index.html")
	if strings.Index(archive, "Third") > strings.Index(archive, "First") {
		t.Errorf("archive not newest first:\n%s", archive)
	}
}

func TestBuild_EmptySite(t *testing.T) {
	out, stats := build(t, 10, func(string) {})
	if stats.Pages != 1 || stats.Notes != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if !strings.Contains(readPage(t, out, "index.html"), "No notes yet.") {
		t.Error("empty index page missing placeholder")
	}
	readPage(t, out, "tags/index.html")
	readPage(t, out, "archive/index.html")
}

func TestBuild_EscapesRawHTML(t *testing.T) {
	out, _ := build(t, 10, func(dir string) {
		testutil.WriteNote(t, dir, ids[0]+".md", "---\ntitle: <script>alert(1)</script>\n---\n<script>alert(2)</script>\n")
	})
	note := readPage(t, out, strings.ToLower(ids[0])+"/index.html")
	if strings.Contains(note, "<script>") {
		t.Errorf("raw HTML leaked:\n%s", note)
	}
}

func TestNotePath(t *testing.T) {
	if got := NotePath("01ARZ3NDEKTSV4RRFFQ69G5FAV"); got != "01arz3ndektsv4rrffq69g5fav" {
		t.Errorf("NotePath = %q", got)
	}
}
