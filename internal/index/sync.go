package index

import (
	"log/slog"

	"github.com/starford/tilog/internal/checksum"
	"github.com/starford/tilog/internal/models"
)

// SyncStats counts what one Sync pass changed.
type SyncStats struct {
	Indexed   int `json:"indexed"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
}

// Sync brings the index up to date with notes:
//   - new or changed notes are upserted
//   - indexed notes missing from notes are deleted
func Sync(db NoteIndex, notes []models.ParsedNote, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		seen[n.ID] = struct{}{}
		cs := checksum.Note(n)
		if checksums[n.ID] == cs {
			stats.Unchanged++
			continue
		}
		if err := db.UpsertNote(rowFor(n, cs), n.Content); err != nil {
			logger.Warn("sync: index failed", slog.String("id", n.ID), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("id", n.ID))
	}

	for id := range checksums {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := db.DeleteNote(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("id", id))
	}
	return stats, nil
}

func rowFor(n models.ParsedNote, cs string) NoteRow {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteRow{
		ID:        n.ID,
		Title:     n.Title,
		Checksum:  cs,
		Tags:      tags,
		CreatedAt: n.Metadata.Date,
	}
}
