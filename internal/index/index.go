package index

// NoteIndex is the search index consumed by the note service.
type NoteIndex interface {
	UpsertNote(n NoteRow, body string) error
	DeleteNote(id string) error
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ NoteIndex = (*DB)(nil)
