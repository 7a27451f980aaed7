package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type changeLog struct {
	mu      sync.Mutex
	batches [][]Change
}

func (l *changeLog) record(changes []Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, changes)
}

func (l *changeLog) has(kind, name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.batches {
		for _, c := range b {
			if c.Kind == kind && c.Filename == name {
				return true
			}
		}
	}
	return false
}

func startWatch(t *testing.T, dir string, log *changeLog) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, dir, 50*time.Millisecond, quietLogger(), log.record)
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewNoteReported(t *testing.T) {
	dir := t.TempDir()
	var log changeLog
	startWatch(t, dir, &log)

	_ = os.WriteFile(filepath.Join(dir, "01HZX0000000000000000000AA.md"), []byte("---\ntitle: x\n---\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.has(ChangeCreated, "01HZX0000000000000000000AA.md")
	}, "expected created callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var log changeLog
	startWatch(t, dir, &log)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.has(ChangeCreated, "a.md")
	}, "expected created callback for a.md")
	if log.has(ChangeCreated, "notes.txt") {
		t.Error("non-note file reported")
	}
}

func TestWatcher_DeleteReported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "del.md")
	_ = os.WriteFile(path, []byte("x"), 0o644)

	var log changeLog
	startWatch(t, dir, &log)
	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.has(ChangeDeleted, "del.md")
	}, "expected deleted callback")
}

func TestWatcher_RenameReportsBothSides(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "old.md"), []byte("x"), 0o644)

	var log changeLog
	startWatch(t, dir, &log)
	_ = os.Rename(filepath.Join(dir, "old.md"), filepath.Join(dir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.has(ChangeDeleted, "old.md") && log.has(ChangeCreated, "renamed.md")
	}, "rename should report the old name deleted and the new name created")
}
