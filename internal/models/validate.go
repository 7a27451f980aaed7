package models

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/noteid"
)

// ValidationError lists every rule a RawNote violates, keyed by field.
type ValidationError struct {
	Filename string
	Fields   validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// Is matches apperr.ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == apperr.ErrValidation
}

var (
	errBlank       = validation.NewError("validation_required", "cannot be blank")
	errNoteExt     = validation.NewError("validation_note_ext", "must end with "+NoteExt)
	errIdentifier  = validation.NewError("validation_identifier", "must be a valid ULID")
	errFrontMatter = validation.NewError("validation_front_matter", "must start with front matter ("+FrontMatterDelim+")")
)

// Validate checks the structural rules of a note file and reports all of the
// violations at once, including every rule a single field breaks.
func (n RawNote) Validate() error {
	err := validation.ValidateStruct(&n,
		validation.Field(&n.Filename, every(notBlank, hasNoteExt)),
		validation.Field(&n.Content, every(notBlank, startsWithFrontMatter)),
		validation.Field(&n.ID, every(notBlank, isIdentifier)),
	)
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Filename: n.Filename, Fields: fields}
	}
	return fmt.Errorf("models: validate %s: %w", n.Filename, err)
}

// ValidateContent reports whether content could be the body of a note file.
func ValidateContent(content string) bool {
	return validation.Validate(content, every(notBlank, startsWithFrontMatter)) == nil
}

// every runs all checks against a string field and joins the messages of
// those that fail into one error.
func every(checks ...func(string) error) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		var failed []error
		for _, check := range checks {
			if err := check(s); err != nil {
				failed = append(failed, err)
			}
		}
		switch len(failed) {
		case 0:
			return nil
		case 1:
			return failed[0]
		}
		msgs := make([]string, len(failed))
		for i, err := range failed {
			msgs[i] = err.Error()
		}
		return validation.NewError("validation_note_rules", strings.Join(msgs, " and "))
	})
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errBlank
	}
	return nil
}

func hasNoteExt(s string) error {
	if !strings.HasSuffix(s, NoteExt) {
		return errNoteExt
	}
	return nil
}

func startsWithFrontMatter(s string) error {
	if !strings.HasPrefix(strings.TrimSpace(s), FrontMatterDelim) {
		return errFrontMatter
	}
	return nil
}

func isIdentifier(s string) error {
	if !noteid.IsValid(s) {
		return errIdentifier
	}
	return nil
}
