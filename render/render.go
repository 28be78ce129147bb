// Package render turns the embedded html/template pages into an
// echo.Renderer.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Layout is the template every page is executed through.
const Layout = "base.html"

// TemplateRegistry holds one parsed template set per page. Each set
// contains the layout, the shared partials and the page itself.
type TemplateRegistry struct {
	templates map[string]*template.Template
}

// Funcs available to every page.
var Funcs = template.FuncMap{
	"markdown": Markdown,
	"date": func(t time.Time) string {
		return t.Format("2 Jan 2006 15:04")
	},
	"day": func(t time.Time) string {
		return t.Format(time.DateOnly)
	},
	"add": func(a, b int) int { return a + b },
}

// New parses every page found in fsys. Files starting with an underscore
// are partials and are parsed into each page.
func New(fsys fs.FS) (*TemplateRegistry, error) {
	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	var partials, pages []string
	for _, f := range files {
		switch {
		case f == Layout:
		case strings.HasPrefix(path.Base(f), "_"):
			partials = append(partials, f)
		default:
			pages = append(pages, f)
		}
	}

	r := &TemplateRegistry{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		patterns := append([]string{Layout}, partials...)
		patterns = append(patterns, page)
		t, err := template.New(page).Option("missingkey=zero").Funcs(Funcs).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return errors.New("template not found: " + name)
	}
	return tmpl.ExecuteTemplate(w, Layout, data)
}

// Has reports whether the page name was parsed.
func (t *TemplateRegistry) Has(name string) bool {
	_, ok := t.templates[name]
	return ok
}
