package noteid

import (
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/starford/tilog/internal/apperr"
)

func TestIsValid(t *testing.T) {
	cases := map[string]bool{
		"01K5RR9NFREBCCRT4YHNN94W29":  true,
		"01k5rr9nfrebccrt4yhnn94w29":  true,
		"01ARZ3NDEKTSV4RRFFQ69G5FAV":  true,
		"invalid":                     false,
		"":                            false,
		"01K5RR9NFREBCCRT4YHNN94W2":   false,
		"01K5RR9NFREBCCRT4YHNN94W299": false,
		"01K5RR9NFREBCCRT4YHNN94W2I":  false,
		"01K5RR9NFREBCCRT4YHNN94W2L":  false,
		"01K5RR9NFREBCCRT4YHNN94W2O":  false,
		"01K5RR9NFREBCCRT4YHNN94W2U":  false,
		"01K5RR9NFREBCCRT4YHNN94W2-":  false,
	}
	for id, want := range cases {
		if got := IsValid(id); got != want {
			t.Errorf("IsValid(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestDecodeTimestamp(t *testing.T) {
	ms, err := DecodeTimestamp("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if err != nil {
		t.Fatalf("DecodeTimestamp: %v", err)
	}
	if ms != 1469922850259 {
		t.Errorf("ms = %d, want 1469922850259", ms)
	}

	lower, err := DecodeTimestamp("01arz3ndektsv4rrffq69g5fav")
	if err != nil {
		t.Fatalf("DecodeTimestamp lower: %v", err)
	}
	if lower != ms {
		t.Errorf("case changed timestamp: %d vs %d", lower, ms)
	}
}

func TestDecodeTimestamp_Invalid(t *testing.T) {
	_, err := DecodeTimestamp("not-an-id")
	if !errors.Is(err, apperr.ErrInvalidIdentifier) {
		t.Errorf("err = %v, want ErrInvalidIdentifier", err)
	}
}

func TestTimeAndISO(t *testing.T) {
	ts, err := Time("01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if got := ISO(ts); got != "2016-07-30T23:54:10.259Z" {
		t.Errorf("ISO = %q", got)
	}
}

func TestCompareFollowsTimestamp(t *testing.T) {
	ids := []string{
		"01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"01hzx0000000000000000000aa",
		"01HZX1000000000000000000AA",
		"01J000000000000000000000ZZ",
		"01K5RR9NFREBCCRT4YHNN94W29",
	}
	for i := 0; i < len(ids); i++ {
		for j := 0; j < len(ids); j++ {
			a, _ := DecodeTimestamp(ids[i])
			b, _ := DecodeTimestamp(ids[j])
			cmp := Compare(ids[i], ids[j])
			if (cmp < 0) != (a < b) {
				t.Errorf("Compare(%s, %s) = %d but timestamps %d, %d", ids[i], ids[j], cmp, a, b)
			}
		}
	}
}

func TestCompareTieBreaksOnSuffix(t *testing.T) {
	a := "01HZX0000000000000000000AA"
	b := "01HZX0000000000000000000AB"
	if Compare(a, b) >= 0 {
		t.Errorf("expected %s < %s", a, b)
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 6, 8, 22, 37, 35, 104_000_000, time.UTC)
	id, err := New(now, rand.Reader)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !IsValid(id) {
		t.Fatalf("generated id %q is not valid", id)
	}
	got, _ := Time(id)
	if !got.Equal(now) {
		t.Errorf("time = %v, want %v", got, now)
	}
}

func TestIsValid_OverflowingTimestampIsWellFormed(t *testing.T) {
	for _, id := range []string{
		"8ZZZZZZZZZZZZZZZZZZZZZZZZZ",
		"ZZZZZZZZZZ0000000000000000",
		"zzzzzzzzzz0000000000000000",
	} {
		if !IsValid(id) {
			t.Errorf("IsValid(%q) = false, want true", id)
		}
		if _, err := DecodeTimestamp(id); !errors.Is(err, apperr.ErrInvalidIdentifier) {
			t.Errorf("DecodeTimestamp(%q) err = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}

func TestIsValid_RejectsMultibyte(t *testing.T) {
	// 24 ASCII characters plus one two-byte rune is 26 bytes.
	if IsValid("01K5RR9NFREBCCRT4YHNN94W" + "ſ") {
		t.Error("multibyte identifier accepted")
	}
}
