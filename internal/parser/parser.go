// Package parser splits a note into its metadata block and body and
// normalizes the metadata.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteid"
)

// yamlFormat recognizes a YAML block between a pair of --- lines.
var yamlFormat = frontmatter.NewFormat(models.FrontMatterDelim, models.FrontMatterDelim, yaml.Unmarshal)

// InvalidIdentifierError reports a note whose identifier cannot be decoded.
type InvalidIdentifierError struct {
	ID string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.ID)
}

// Is matches apperr.ErrInvalidIdentifier.
func (e *InvalidIdentifierError) Is(target error) bool {
	return target == apperr.ErrInvalidIdentifier
}

// FrontMatterError reports a metadata block that fails the schema. Fields
// lists every violated field; Err is set instead when the block is not YAML.
type FrontMatterError struct {
	ID     string
	Fields validation.Errors
	Err    error
}

func (e *FrontMatterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("front matter of %s: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("front matter of %s: %v", e.ID, e.Fields)
}

func (e *FrontMatterError) Unwrap() error { return e.Err }

// Is matches apperr.ErrFrontMatter.
func (e *FrontMatterError) Is(target error) bool {
	return target == apperr.ErrFrontMatter
}

var (
	errNotString     = validation.NewError("validation_is_string", "must be a string")
	errNotStringList = validation.NewError("validation_is_string_list", "must be a list of strings")
)

var frontMatterRule = validation.Map(
	validation.Key("title", validation.Required, validation.By(isString)),
	validation.Key("tags", validation.By(isStringList)).Optional(),
).AllowExtraKeys()

// Parse validates id, splits content, and returns the normalized note. The
// date always comes from id; a date in the metadata block is ignored.
func Parse(content, id string) (*models.ParsedNote, error) {
	if !noteid.IsValid(id) {
		return nil, &InvalidIdentifierError{ID: id}
	}
	date, err := noteid.Time(id)
	if err != nil {
		return nil, &InvalidIdentifierError{ID: id}
	}

	fm, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, &FrontMatterError{ID: id, Err: err}
	}
	if err := validation.Validate(fm, frontMatterRule); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			return nil, &FrontMatterError{ID: id, Fields: fields}
		}
		return nil, &FrontMatterError{ID: id, Err: err}
	}

	title := fm["title"].(string)
	tags := toStrings(fm["tags"])
	return &models.ParsedNote{
		ID:      id,
		Title:   title,
		Content: strings.TrimSpace(body),
		Tags:    tags,
		Metadata: models.Metadata{
			Title: title,
			Tags:  tags,
			Date:  date,
		},
	}, nil
}

// ParseFile parses a single raw note.
func ParseFile(n models.RawNote) (*models.ParsedNote, error) {
	return Parse(n.Content, n.ID)
}

// ParseFiles parses every note and stops at the first failure.
func ParseFiles(notes []models.RawNote) ([]models.ParsedNote, error) {
	out := make([]models.ParsedNote, 0, len(notes))
	for _, n := range notes {
		p, err := ParseFile(n)
		if err != nil {
			return nil, fmt.Errorf("parser: %s: %w", n.Filename, err)
		}
		out = append(out, *p)
	}
	return out, nil
}

// Failure records a note that ParseEach dropped.
type Failure struct {
	Filename string `json:"filename"`
	ID       string `json:"id"`
	Err      error  `json:"-"`
}

// Error returns the failure message.
func (f Failure) Error() string {
	return f.Err.Error()
}

// ParseEach parses every note independently. Notes that fail are returned as
// failures instead of aborting the batch; input order is preserved.
func ParseEach(notes []models.RawNote) ([]models.ParsedNote, []Failure) {
	out := make([]models.ParsedNote, 0, len(notes))
	var failures []Failure
	for _, n := range notes {
		p, err := ParseFile(n)
		if err != nil {
			failures = append(failures, Failure{Filename: n.Filename, ID: n.ID, Err: err})
			continue
		}
		out = append(out, *p)
	}
	return out, failures
}

// splitFrontMatter separates the metadata block from the body. A document
// without a block yields an empty map and the whole content as body.
func splitFrontMatter(content string) (map[string]any, string, error) {
	var fm map[string]any
	body, err := frontmatter.Parse(strings.NewReader(strings.TrimLeft(content, " \t\r\n")), &fm, yamlFormat)
	if err != nil {
		return nil, "", err
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, string(body), nil
}

func isString(value any) error {
	if _, ok := value.(string); !ok {
		return errNotString
	}
	return nil
}

func isStringList(value any) error {
	items, ok := value.([]any)
	if !ok {
		return errNotStringList
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return errNotStringList
		}
	}
	return nil
}

func toStrings(value any) []string {
	items, _ := value.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.(string))
	}
	return out
}
