package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/tilog/internal/cache"
	"github.com/starford/tilog/internal/content"
	"github.com/starford/tilog/internal/index"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteservice"
	"github.com/starford/tilog/internal/storage"
)

// pipeline is the composed content stack: storage, fetcher, build cache and
// the query service on top.
type pipeline struct {
	store   *storage.FS
	fetcher *content.Fetcher
	svc     *noteservice.Service
	db      *index.DB
}

// newPipeline composes the content stack from cfg. The search index is
// opened only when withIndex is set; the caller must call close.
func newPipeline(cfg *Config, logger *slog.Logger, withIndex bool) (*pipeline, error) {
	store, err := storage.NewFS(cfg.Notes.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	fetcher := content.NewFetcher(store,
		content.WithConcurrency(cfg.Fetch.Concurrency),
		content.WithLogger(logger),
	)

	var source content.Source = fetcher
	if cfg.Cache.Enabled {
		source = content.NewCached(fetcher, content.CachedOptions{
			Memory:       cache.NewMemory[[]models.RawNote](cfg.Cache.TTL, nil),
			Disk:         cache.NewFile[[]models.RawNote](cfg.Cache.Path, cfg.Cache.TTL, nil),
			Lock:         cache.NewFileLock(cfg.Cache.LockPath, cfg.Cache.LockStale, nil),
			LockWait:     cfg.Cache.LockWait,
			PollInterval: cfg.Cache.PollInterval,
			Logger:       logger,
		})
	}

	p := &pipeline{store: store, fetcher: fetcher}
	opts := []noteservice.Option{
		noteservice.WithReporter(fetcher),
		noteservice.WithWriter(store),
		noteservice.WithPageSize(cfg.Site.PageSize),
		noteservice.WithLogger(logger),
	}
	if withIndex {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		p.db = db
		opts = append(opts, noteservice.WithIndex(db))
	}
	p.svc = noteservice.NewService(source, opts...)
	return p, nil
}

func (p *pipeline) close() {
	if p.db != nil {
		p.db.Close()
	}
}
