// Package pagination slices an ordered collection into fixed-size pages.
package pagination

// DefaultPageSize is the number of notes on a listing page.
const DefaultPageSize = 10

// Page is one slice of an ordered collection. Number is 1-indexed.
type Page[T any] struct {
	Items  []T `json:"items"`
	Number int `json:"page"`
}

// Paginate returns page number of items. Pages outside the collection are
// empty rather than an error.
func Paginate[T any](items []T, number, size int) Page[T] {
	p := Page[T]{Items: []T{}, Number: number}
	if number < 1 || size < 1 {
		return p
	}
	start := (number - 1) * size
	if start >= len(items) {
		return p
	}
	end := min(start+size, len(items))
	p.Items = items[start:end]
	return p
}

// TotalPages returns how many pages count items fill.
func TotalPages(count, size int) int {
	if count <= 0 || size < 1 {
		return 0
	}
	return (count + size - 1) / size
}
