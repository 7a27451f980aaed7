// Package slug maps tags to URL path segments and back.
//
// Tags made only of ASCII letters, digits, '-' and '_' are used as-is. Any
// other tag, and any tag that itself starts with the "b64_" marker, is encoded
// as URL-safe, unpadded base64 behind the marker.
package slug

import (
	"encoding/base64"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/tilog/internal/metrics"
)

// Prefix marks an encoded slug.
const Prefix = "b64_"

var plainTag = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// TagToSlug returns the path segment for tag. A plain tag that starts with
// Prefix is encoded too, so SlugToTag always gives back the original.
func TagToSlug(tag string) string {
	if plainTag.MatchString(tag) && !strings.HasPrefix(tag, Prefix) {
		return tag
	}
	return Prefix + base64.RawURLEncoding.EncodeToString([]byte(tag))
}

// SlugToTag reverses TagToSlug. A slug that cannot be decoded is returned
// unchanged so that a malformed link still resolves to something.
func SlugToTag(s string) string {
	encoded, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return s
	}
	// Accept padded input as well as the unpadded form we produce.
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err == nil && !utf8.Valid(data) {
		err = errInvalidUTF8
	}
	if err != nil {
		metrics.Default().SlugDecodeFallbacks.Inc()
		slog.Warn("slug: decode failed, using raw slug",
			slog.String("slug", s),
			slog.String("error", err.Error()))
		return s
	}
	return string(data)
}

type decodeError string

func (e decodeError) Error() string { return string(e) }

const errInvalidUTF8 = decodeError("decoded bytes are not valid UTF-8")
