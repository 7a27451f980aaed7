// Package apperr holds the sentinel errors shared across the content pipeline.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDirectoryAccess   = errors.New("notes directory not accessible")
	ErrRead              = errors.New("read failed")
	ErrValidation        = errors.New("validation failed")
	ErrFrontMatter       = errors.New("front matter validation failed")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)
