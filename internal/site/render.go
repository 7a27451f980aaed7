package site

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// newMarkdown builds the body renderer: GitHub-flavored Markdown with heading
// ids. Raw HTML in note bodies is dropped.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

func renderBody(md goldmark.Markdown, body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("site: render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark drops raw HTML
}

const layout = `{{define "layout"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Heading}}{{.Heading}} | {{end}}{{.Site}}</title>
</head>
<body>
<nav><a href="{{.Base}}/">{{.Site}}</a> <a href="{{.Base}}/archive/">Archive</a> <a href="{{.Base}}/tags/">Tags</a></nav>
<main>
{{template "content" .}}
</main>
</body>
</html>
{{end}}`

const noteList = `{{define "notes"}}<ul>
{{range .Notes}}<li><a href="{{$.Base}}/{{.Path}}/">{{.Title}}</a> <time datetime="{{.Date}}">{{.Day}}</time>{{range .Tags}} <a href="{{$.Base}}/tags/{{.Slug}}/">#{{.Name}}</a>{{end}}</li>
{{end}}</ul>
{{end}}`

var pageTemplates = map[string]string{
	"index": `{{define "content"}}{{if .Heading}}<h1>{{.Heading}}</h1>{{end}}
{{range .Notes}}<article>
<h2><a href="{{$.Base}}/{{.Path}}/">{{.Title}}</a></h2>
<time datetime="{{.Date}}">{{.Day}}</time>
{{.HTML}}
</article>
{{else}}<p>No notes yet.</p>
{{end}}{{with .Pager}}<nav>{{if .Prev}}<a href="{{.Prev}}">Newer</a>{{end}} {{.Number}} / {{.Total}} {{if .Next}}<a href="{{.Next}}">Older</a>{{end}}</nav>{{end}}
{{end}}`,
	"archive": `{{define "content"}}<h1>Archive</h1>
<p>All {{len .Notes}} notes, newest first.</p>
{{template "notes" .}}{{end}}`,
	"tags": `{{define "content"}}<h1>Tags</h1>
<ul>
{{range .Tags}}<li><a href="{{$.Base}}/tags/{{.Slug}}/">{{.Name}}</a> ({{.Count}})</li>
{{end}}</ul>
{{end}}`,
	"tag": `{{define "content"}}<h1>#{{.Heading}}</h1>
{{template "notes" .}}{{end}}`,
	"note": `{{define "content"}}{{with .Note}}<article>
<h1>{{.Title}}</h1>
<time datetime="{{.Date}}">{{.Day}}</time>
{{range .Tags}}<a href="{{$.Base}}/tags/{{.Slug}}/">#{{.Name}}</a> {{end}}
{{.HTML}}
</article>{{end}}
{{end}}`,
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageTemplates))
	for name, body := range pageTemplates {
		t, err := template.New(name).Parse(layout + noteList + body)
		if err != nil {
			return nil, fmt.Errorf("site: parse %s template: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}
