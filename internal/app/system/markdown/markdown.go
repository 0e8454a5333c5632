// Package markdown renders forum post bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/dalemusser/planora/internal/app/system/htmlsanitize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub-flavoured tables, strikethrough,
// autolinks and task lists enabled. Raw HTML in the source passes through
// the renderer and is cleaned afterwards by the sanitizer.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)
	return &Renderer{md: md}
}

// Render returns the sanitized HTML for src.
func (r *Renderer) Render(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlsanitize.Sanitize(buf.String())), nil
}
