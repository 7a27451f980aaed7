package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/tilog/internal/models"
)

type scaffoldFrontMatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags,omitempty"`
}

// Scaffold renders a new note document: a metadata block with title and
// tags followed by body.
func Scaffold(title string, tags []string, body string) (string, error) {
	fm, err := yaml.Marshal(scaffoldFrontMatter{Title: title, Tags: tags})
	if err != nil {
		return "", fmt.Errorf("content: scaffold: %w", err)
	}
	var b strings.Builder
	b.WriteString(models.FrontMatterDelim + "\n")
	b.Write(fm)
	b.WriteString(models.FrontMatterDelim + "\n\n")
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// SplitTags turns a comma-separated list into trimmed, non-empty tags.
func SplitTags(list string) []string {
	var out []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
