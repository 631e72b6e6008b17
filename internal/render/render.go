// Package render turns issue descriptions and comments into HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown converts GitHub-flavoured markdown to HTML. Raw HTML in the input
// is dropped.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// MustMarkdown renders src, falling back to an error paragraph.
func MustMarkdown(src string) string {
	out, err := Markdown(src)
	if err != nil {
		return "<p>Error rendering markdown</p>"
	}
	return out
}
