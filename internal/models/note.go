// Package models defines the domain types for tilog.
package models

import "time"

// NoteExt is the file extension every note carries.
const NoteExt = ".md"

// FrontMatterDelim opens and closes a note's metadata block.
const FrontMatterDelim = "---"

// RawNote is a note file as read from disk, before its metadata is parsed.
type RawNote struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	ID       string `json:"id"`
}

// Metadata is the normalized metadata block of a note. Date always comes from
// the identifier, never from the file.
type Metadata struct {
	Title string    `json:"title"`
	Tags  []string  `json:"tags"`
	Date  time.Time `json:"date"`
}

// ParsedNote is a validated note with its metadata block stripped from Content.
type ParsedNote struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Metadata Metadata `json:"metadata"`
}

// ErrorKind classifies a per-file fetch failure.
type ErrorKind string

const (
	KindReadError       ErrorKind = "read_error"
	KindValidationError ErrorKind = "validation_error"
)

// FetchError records why one file was skipped.
type FetchError struct {
	Filename string    `json:"filename"`
	Error    string    `json:"error"`
	Kind     ErrorKind `json:"kind"`
}

// FetchResult aggregates one directory scan. Both slices follow the order of
// the directory listing.
type FetchResult struct {
	Success []RawNote    `json:"success"`
	Errors  []FetchError `json:"errors"`
}
