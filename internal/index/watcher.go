package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tilog/internal/models"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reporting them.
const DefaultDebounce = 200 * time.Millisecond

// Change kinds reported by Watch.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change is one note file event.
type Change struct {
	Kind     string `json:"kind"`
	Filename string `json:"filename"`
}

// ChangeFunc receives a debounced batch of changes, in arrival order with
// one entry per file.
type ChangeFunc func(changes []Change)

// Watch starts an fsnotify watcher on the notes directory and reports note
// file changes until ctx is cancelled. The directory is flat, so
// subdirectories are not watched.
func Watch(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger, fn ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger.Info("watcher: started", slog.String("dir", dir))

	var (
		pending  []Change
		position = map[string]int{}
		timer    *time.Timer
		timerCh  <-chan time.Time
	)
	record := func(kind, name string) {
		if i, ok := position[name]; ok {
			// A created file that is written again is still new.
			if !(pending[i].Kind == ChangeCreated && kind == ChangeUpdated) {
				pending[i].Kind = kind
			}
		} else {
			position[name] = len(pending)
			pending = append(pending, Change{Kind: kind, Filename: name})
		}
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			batch := pending
			pending = nil
			position = map[string]int{}
			if len(batch) > 0 && fn != nil {
				fn(batch)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if filepath.Ext(name) != models.NoteExt {
				continue
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				record(ChangeCreated, name)
			case ev.Op&fsnotify.Write != 0:
				record(ChangeUpdated, name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new path arrives as Create.
				record(ChangeDeleted, name)
			}
			logger.Debug("watcher: event", slog.String("filename", name), slog.String("op", ev.Op.String()))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
