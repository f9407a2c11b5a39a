// Package preview renders markdown documents to HTML.
package preview

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts markdown source to an HTML fragment.
type Renderer interface {
	Render(src string) (string, error)
}

// Goldmark renders CommonMark (fenced code included) plus GFM tables.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark returns the default Renderer.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

// Render implements Renderer. Front matter is not rendered.
func (g *Goldmark) Render(src string) (string, error) {
	_, body := Split(src)
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("preview: render: %w", err)
	}
	return buf.String(), nil
}

var _ Renderer = (*Goldmark)(nil)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; padding: 0 1em; }
pre { background: #f4f4f4; padding: .75em; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: .25em .5em; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page wraps a rendered fragment in a standalone HTML document.
func Page(title, fragment string) (string, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(fragment)})
	if err != nil {
		return "", fmt.Errorf("preview: page: %w", err)
	}
	return buf.String(), nil
}
