// Package checksum fingerprints note content so unchanged notes can be skipped.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/starford/tilog/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Note returns the digest of the indexed fields of n.
func Note(n models.ParsedNote) string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteByte(0)
	b.WriteString(strings.Join(n.Tags, "\x1f"))
	b.WriteByte(0)
	b.WriteString(n.Content)
	return Sum([]byte(b.String()))
}
