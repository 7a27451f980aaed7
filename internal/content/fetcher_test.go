package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/storage"
	"github.com/starford/tilog/internal/testutil"
)

const (
	idA = "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	idB = "01HZX0000000000000000000AA"
	idC = "01K5RR9NFREBCCRT4YHNN94W29"
)

func TestListNoteFiles_FiltersExtension(t *testing.T) {
	dir, store := testutil.TestNotes(t)
	testutil.WriteNote(t, dir, idA+".md", testutil.Note("A"))
	testutil.WriteNote(t, dir, "notes.txt", "ignored")
	testutil.WriteNote(t, dir, "README", "ignored")

	files, err := NewFetcher(store).ListNoteFiles(context.Background())
	if err != nil {
		t.Fatalf("ListNoteFiles: %v", err)
	}
	if len(files) != 1 || files[0] != idA+".md" {
		t.Errorf("files = %v", files)
	}
}

func TestFetchAll_MissingDirectory(t *testing.T) {
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "non-existent-directory"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewFetcher(store).FetchAll(context.Background())
	if !errors.Is(err, apperr.ErrDirectoryAccess) {
		t.Fatalf("err = %v, want ErrDirectoryAccess", err)
	}
	var dirErr *DirectoryAccessError
	if !errors.As(err, &dirErr) || !errors.Is(dirErr.Err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot access notes directory") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFetchAll_PartialFailureIsolation(t *testing.T) {
	dir, store := testutil.TestNotes(t)
	testutil.WriteNote(t, dir, idA+".md", testutil.Note("A"))
	testutil.WriteNote(t, dir, "not-a-ulid.md", testutil.Note("Bad"))
	testutil.WriteNote(t, dir, idC+".md", testutil.Note("C"))

	res, err := NewFetcher(store).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(res.Success) != 2 {
		t.Fatalf("success = %d, want 2", len(res.Success))
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(res.Errors))
	}
	e := res.Errors[0]
	if e.Kind != models.KindValidationError || e.Filename != "not-a-ulid.md" {
		t.Errorf("error = %+v", e)
	}
	if !strings.Contains(e.Error, "id:") {
		t.Errorf("error message should name the id rule: %q", e.Error)
	}
}

func TestFetchAll_PreservesListingOrder(t *testing.T) {
	dir, store := testutil.TestNotes(t)
	ids := []string{idC, idA, idB}
	for _, id := range ids {
		testutil.WriteNote(t, dir, id+".md", testutil.Note(id))
	}
	testutil.WriteNote(t, dir, "01ZZZZ.md", "---\ntitle: short\n---\n")

	res, err := NewFetcher(store, WithConcurrency(2)).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	want := []string{idA, idB, idC}
	if len(res.Success) != len(want) {
		t.Fatalf("success = %d", len(res.Success))
	}
	for i, n := range res.Success {
		if n.ID != want[i] {
			t.Errorf("success[%d] = %s, want %s", i, n.ID, want[i])
		}
		if n.Filename != want[i]+".md" {
			t.Errorf("filename = %s", n.Filename)
		}
	}
}

func TestFetchAll_ReadErrorClassified(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	dir, store := testutil.TestNotes(t)
	testutil.WriteNote(t, dir, idA+".md", testutil.Note("A"))
	locked := filepath.Join(dir, idB+".md")
	testutil.WriteNote(t, dir, idB+".md", testutil.Note("B"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	res, err := NewFetcher(store).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(res.Success) != 1 || len(res.Errors) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Errors[0].Kind != models.KindReadError {
		t.Errorf("kind = %s, want read_error", res.Errors[0].Kind)
	}
}

func TestReadAndValidate(t *testing.T) {
	dir, store := testutil.TestNotes(t)
	testutil.WriteNote(t, dir, idA+".md", "no front matter here")
	f := NewFetcher(store)

	_, err := f.ReadAndValidate(context.Background(), idA+".md")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}

	_, err = f.ReadAndValidate(context.Background(), idB+".md")
	if !errors.Is(err, apperr.ErrRead) {
		t.Errorf("err = %v, want ErrRead", err)
	}
}

func TestFetchValid_EndToEndRecord(t *testing.T) {
	dir, store := testutil.TestNotes(t)
	content := "---\ntitle: Hello\ntags: [x]\n---\nBody text"
	testutil.WriteNote(t, dir, idA+".md", content)

	notes, err := NewFetcher(store).FetchValid(context.Background())
	if err != nil {
		t.Fatalf("FetchValid: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("notes = %d", len(notes))
	}
	want := models.RawNote{Filename: idA + ".md", Content: content, ID: idA}
	if notes[0] != want {
		t.Errorf("note = %+v, want %+v", notes[0], want)
	}
}

func TestFetchAll_CancelledContext(t *testing.T) {
	dir, store := testutil.TestNotes(t)
	testutil.WriteNote(t, dir, idA+".md", testutil.Note("A"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFetcher(store).FetchAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFetchAll_OverflowingIdentifierPassesFetch(t *testing.T) {
	const overflow = "ZZZZZZZZZZ0000000000000000"
	dir, store := testutil.TestNotes(t)
	testutil.WriteNote(t, dir, overflow+".md", testutil.Note("Far future"))

	res, err := NewFetcher(store).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(res.Success) != 1 || res.Success[0].ID != overflow || len(res.Errors) != 0 {
		t.Errorf("result = %+v", res)
	}
}
