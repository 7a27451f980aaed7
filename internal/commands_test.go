package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteid"
	"github.com/starford/tilog/internal/noteservice"
	"github.com/starford/tilog/internal/testutil"
)

const helloID = "01ARZ3NDEKTSV4RRFFQ69G5FAV"

func testConfig(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Notes.Path = filepath.Join(root, "notes")
	cfg.Cache.Path = filepath.Join(root, ".tilog", "cache.json")
	cfg.Cache.LockPath = filepath.Join(root, ".tilog", "cache.lock")
	cfg.Site.OutputDir = filepath.Join(root, "public")
	cfg.SQLite.Path = filepath.Join(root, ".tilog", "index.db")
	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func quiet(cfg *Config, out io.Writer) []Option {
	return []Option{WithConfig(cfg), WithLogOutput(io.Discard), WithOutput(out)}
}

func TestBuild_WritesSite(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteNote(t, cfg.Notes.Path, helloID+".md", "---\ntitle: Hello\ntags: [x]\n---\nBody text")

	if err := Build(context.Background(), quiet(cfg, io.Discard)...); err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, rel := range []string{
		"index.html",
		"archive/index.html",
		"tags/index.html",
		"tags/x/index.html",
		strings.ToLower(helloID) + "/index.html",
	} {
		if _, err := os.Stat(filepath.Join(cfg.Site.OutputDir, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	page, err := os.ReadFile(filepath.Join(cfg.Site.OutputDir, strings.ToLower(helloID), "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "Hello") || !strings.Contains(string(page), "Body text") {
		t.Errorf("note page missing content:\n%s", page)
	}
	if _, err := os.Stat(cfg.Cache.Path); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
	if _, err := os.Stat(cfg.Cache.LockPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lock file left behind: %v", err)
	}
}

func TestBuild_SkipsBadNotes(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteNote(t, cfg.Notes.Path, helloID+".md", testutil.Note("Good"))
	testutil.WriteNote(t, cfg.Notes.Path, "not-an-id.md", testutil.Note("Bad"))

	if err := Build(context.Background(), quiet(cfg, io.Discard)...); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Site.OutputDir, strings.ToLower(helloID), "index.html")); err != nil {
		t.Errorf("good note not rendered: %v", err)
	}
}

func TestBuild_MissingDirectoryFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notes.Path = filepath.Join(t.TempDir(), "absent")
	cfg.Cache.Enabled = false

	err := Build(context.Background(), quiet(cfg, io.Discard)...)
	if !errors.Is(err, apperr.ErrDirectoryAccess) {
		t.Fatalf("err = %v, want ErrDirectoryAccess", err)
	}
}

func TestCheck_CleanDirectory(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteNote(t, cfg.Notes.Path, helloID+".md", testutil.Note("Good", "go"))

	var out bytes.Buffer
	if err := Check(context.Background(), quiet(cfg, &out)...); err != nil {
		t.Fatalf("Check: %v", err)
	}
	var report noteservice.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	if report.Notes != 1 || len(report.Errors) != 0 || len(report.ParseFailures) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestCheck_ReportsRejectedFiles(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteNote(t, cfg.Notes.Path, helloID+".md", testutil.Note("Good"))
	testutil.WriteNote(t, cfg.Notes.Path, "01HZX0000000000000000000AA.md", "no front matter")
	testutil.WriteNote(t, cfg.Notes.Path, "01HZX1000000000000000000AA.md", "---\ntags: [a]\n---\nno title")

	var out bytes.Buffer
	err := Check(context.Background(), quiet(cfg, &out)...)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("err = %v, want ErrCheckFailed", err)
	}
	var report noteservice.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Notes != 1 {
		t.Errorf("notes = %d, want 1", report.Notes)
	}
	if len(report.Errors) != 1 || report.Errors[0].Kind != models.KindValidationError {
		t.Errorf("errors = %+v", report.Errors)
	}
	if len(report.ParseFailures) != 1 || !strings.Contains(report.ParseFailures[0].Error, "title") {
		t.Errorf("parse failures = %+v", report.ParseFailures)
	}
}

func TestNewNote_WritesValidNote(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	err := NewNote(context.Background(), "Context cancellation", []string{"go", "concurrency"}, "Cancel early.",
		quiet(cfg, &out)...)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}

	filename := strings.TrimSpace(out.String())
	id, ok := strings.CutSuffix(filename, models.NoteExt)
	if !ok || !noteid.IsValid(id) {
		t.Fatalf("printed filename %q is not a note file", filename)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Notes.Path, filename))
	if err != nil {
		t.Fatalf("note not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\ntitle: Context cancellation\n") {
		t.Errorf("unexpected document:\n%s", data)
	}

	// The new note passes the same checks as every other file.
	if err := Check(context.Background(), quiet(cfg, io.Discard)...); err != nil {
		t.Errorf("Check after NewNote: %v", err)
	}
}

func TestNewNote_RequiresTitle(t *testing.T) {
	cfg := testConfig(t)
	err := NewNote(context.Background(), "", nil, "body", quiet(cfg, io.Discard)...)
	if !errors.Is(err, apperr.ErrFrontMatter) {
		t.Fatalf("err = %v, want ErrFrontMatter", err)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
	if err := Check(context.Background()); err == nil {
		t.Fatal("Check without config should fail")
	}
}
