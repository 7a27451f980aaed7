package content

import (
	"fmt"

	"github.com/starford/tilog/internal/apperr"
)

// DirectoryAccessError reports that the notes directory could not be listed.
// It is fatal for any fetch.
type DirectoryAccessError struct {
	Dir string
	Err error
}

func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("cannot access notes directory %s: %v", e.Dir, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error { return e.Err }

// Is matches apperr.ErrDirectoryAccess.
func (e *DirectoryAccessError) Is(target error) bool {
	return target == apperr.ErrDirectoryAccess
}

// ReadError reports that a single note file could not be read.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is matches apperr.ErrRead.
func (e *ReadError) Is(target error) bool {
	return target == apperr.ErrRead
}
