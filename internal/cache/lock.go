package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Locker is an advisory lock guarding a cache rebuild.
type Locker interface {
	// TryAcquire takes the lock without blocking. It returns false when
	// another holder has it.
	TryAcquire() (bool, error)
	// Release gives the lock up. Releasing a lock that is not held is a no-op.
	Release() error
}

// FileLock is a Locker shared between processes. The lock file holds the
// owner's pid and a token unique to the acquisition; a lock file older than
// the stale threshold is treated as abandoned and taken over.
type FileLock struct {
	path  string
	stale time.Duration
	clock Clock

	mu    sync.Mutex
	token string // set while held
}

// NewFileLock creates a lock backed by the file at path.
func NewFileLock(path string, stale time.Duration, clock Clock) *FileLock {
	if clock == nil {
		clock = SystemClock
	}
	return &FileLock{path: path, stale: stale, clock: clock}
}

// TryAcquire creates the lock file with O_EXCL. It is not reentrant: a
// FileLock that already holds the lock reports false.
func (l *FileLock) TryAcquire() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token != "" {
		return false, nil
	}

	seen, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		info, err := os.Stat(l.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("cache: stat lock: %w", err)
		}
		if err == nil {
			if l.clock.Now().Sub(info.ModTime()) < l.stale {
				return false, nil
			}
			if err := removeIfUnchanged(l.path, seen); err != nil {
				return false, err
			}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("cache: read lock: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("cache: mkdir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("cache: create lock: %w", err)
	}
	token := ulid.Make().String()
	_, werr := fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), token)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(l.path)
		return false, fmt.Errorf("cache: write lock: %w", werr)
	}

	// A concurrent stale takeover may have replaced the file we created.
	if owner, err := os.ReadFile(l.path); err != nil || lockToken(owner) != token {
		return false, nil
	}
	l.token = token
	return true, nil
}

// Release removes the lock file if this FileLock still owns it. A lock that
// was never acquired, or that went stale and was taken over, is left alone.
func (l *FileLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	owner, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cache: read lock: %w", err)
	}
	if lockToken(owner) != token {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: release lock: %w", err)
	}
	return nil
}

// removeIfUnchanged deletes a stale lock file unless another process
// replaced it after it was read.
func removeIfUnchanged(path string, seen []byte) error {
	current, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cache: read lock: %w", err)
	}
	if !bytes.Equal(current, seen) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: remove stale lock: %w", err)
	}
	return nil
}

// lockToken returns the acquisition token on the second line of a lock file.
func lockToken(data []byte) string {
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// MemLock is a Locker for single-process use.
type MemLock struct {
	mu   sync.Mutex
	held bool
}

// TryAcquire takes the lock if it is free.
func (l *MemLock) TryAcquire() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

// Release frees the lock.
func (l *MemLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}
