package render_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/render"
	"yatube/templates"
)

func TestMarkdownSanitizes(t *testing.T) {
	out := string(render.Markdown("**bold** <script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}

func TestRegistryUsesLayoutAndPartials(t *testing.T) {
	fsys := fstest.MapFS{
		"base.html":   {Data: []byte(`<main>{{template "content" .}}</main>`)},
		"_hello.html": {Data: []byte(`{{define "hello"}}hi {{.}}{{end}}`)},
		"page.html":   {Data: []byte(`{{define "content"}}{{template "hello" .}}{{end}}`)},
	}
	reg, err := render.New(fsys)
	require.NoError(t, err)
	assert.True(t, reg.Has("page.html"))
	assert.False(t, reg.Has("_hello.html"))

	var buf bytes.Buffer
	require.NoError(t, reg.Render(&buf, "page.html", "ann", nil))
	assert.Equal(t, "<main>hi ann</main>", buf.String())

	assert.Error(t, reg.Render(&buf, "missing.html", nil, nil))
}

func TestEmbeddedTemplatesParse(t *testing.T) {
	reg, err := render.New(templates.FS)
	require.NoError(t, err)
	for _, page := range []string{
		"index.html", "group_list.html", "profile.html", "post_detail.html",
		"post_create.html", "follow.html", "share.html", "login.html",
		"signup.html", "about_author.html", "about_tech.html", "error.html",
	} {
		assert.True(t, reg.Has(page), page)
	}
}
