// Package noteid validates and decodes the sortable identifiers that name notes.
//
// Identifiers are ULIDs: 26 Crockford base32 characters, case-insensitive, where
// the first 10 characters carry a big-endian millisecond timestamp. Comparing two
// valid identifiers as upper-cased strings orders them by timestamp, then by the
// random suffix.
package noteid

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/starford/tilog/internal/apperr"
)

// Length is the number of characters in an identifier.
const Length = ulid.EncodedSize

// IsValid reports whether id is a well-formed identifier: Length characters
// from the Crockford base32 alphabet, in any case. An identifier whose
// timestamp overflows 48 bits is well-formed but fails DecodeTimestamp.
func IsValid(id string) bool {
	if len(id) != Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		if strings.IndexByte(ulid.Encoding, c) < 0 {
			return false
		}
	}
	return true
}

// DecodeTimestamp returns the millisecond timestamp embedded in id.
func DecodeTimestamp(id string) (int64, error) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return 0, fmt.Errorf("noteid: decode %q: %w", id, apperr.ErrInvalidIdentifier)
	}
	return int64(u.Time()), nil
}

// Time returns the embedded timestamp of id as a UTC time.
func Time(id string) (time.Time, error) {
	ms, err := DecodeTimestamp(id)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// ISO formats t the way note dates are published: UTC with millisecond precision.
func ISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Normalize upper-cases id so that string comparison follows time order.
func Normalize(id string) string {
	return strings.ToUpper(id)
}

// Compare orders two identifiers by their embedded time. Ties fall back to the
// random suffix, which the string comparison already covers.
func Compare(a, b string) int {
	return strings.Compare(Normalize(a), Normalize(b))
}

// New returns a fresh identifier for t using entropy from r.
func New(t time.Time, r io.Reader) (string, error) {
	u, err := ulid.New(ulid.Timestamp(t), r)
	if err != nil {
		return "", fmt.Errorf("noteid: generate: %w", err)
	}
	return u.String(), nil
}
