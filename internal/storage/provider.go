// Package storage defines the notes directory abstraction.
package storage

// Provider is the interface for notes directory operations. Names are
// relative to the directory root.
type Provider interface {
	// Root returns the absolute path of the notes directory.
	Root() string
	// List returns the names of the regular files directly under the root,
	// sorted by name.
	List() ([]string, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Write atomically writes content to the named file.
	Write(name string, content []byte) error
}
