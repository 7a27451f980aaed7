package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

type envelope[T any] struct {
	Data T `json:"data"`
}

// File is a cache shared between processes through a JSON document on disk.
// Freshness is the file's modification time compared with the TTL.
type File[T any] struct {
	path  string
	ttl   time.Duration
	clock Clock
}

// NewFile creates a file cache at path.
func NewFile[T any](path string, ttl time.Duration, clock Clock) *File[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &File[T]{path: path, ttl: ttl, clock: clock}
}

// Path returns the cache file location.
func (c *File[T]) Path() string { return c.path }

// Load returns the cached value when the file exists and is fresh. A stale,
// missing, or unreadable file is a miss; the error is non-nil only for files
// that exist but cannot be used, so callers can log them.
func (c *File[T]) Load() (T, bool, error) {
	var zero T
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("cache: stat %s: %w", c.path, err)
	}
	if c.clock.Now().Sub(info.ModTime()) >= c.ttl {
		return zero, false, nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return zero, false, fmt.Errorf("cache: read %s: %w", c.path, err)
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, false, fmt.Errorf("cache: decode %s: %w", c.path, err)
	}
	return env.Data, true, nil
}

// Store overwrites the cache file with v.
func (c *File[T]) Store(v T) error {
	data, err := json.Marshal(envelope[T]{Data: v})
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("cache: mkdir: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", c.path, err)
	}
	return nil
}

// Clear removes the cache file.
func (c *File[T]) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: clear %s: %w", c.path, err)
	}
	return nil
}
