package render

import (
	"bytes"
	"fmt"

	"DailyDigest/internal/ports"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Stylesheet is prepended to every HTML digest.
const Stylesheet = `<style>
  h1 { color: #2c3e50; font-size: 2.2em; margin-bottom: 0.5em; }
  h2 { color: #34495e; border-bottom: 2px solid #ecf0f1; padding-bottom: 0.3em; margin-top: 1.2em; }
  h3 { color: #2c3e50; margin-top: 1em; }
  blockquote {
    border-left: 4px solid #95a5a6;
    color: #7f8c8d;
    padding-left: 1em;
    margin: 1em 0;
    font-style: italic;
    background: #f9f9f9;
  }
  p, ul, ol {
    line-height: 1.6;
    margin: 0.8em 0;
  }
  .tech {
    background: #ecf0f1;
    padding: 0.5em;
    border-radius: 4px;
    margin-bottom: 0.8em;
  }
  a {
    color: #1e90ff;
    text-decoration: none;
  }
  a:hover {
    text-decoration: underline;
  }
</style>
`

// HTMLRenderer converts Markdown with tables, fenced code and attribute lists.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var _ ports.HTMLRenderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer enables GFM tables and {#id .class} attributes; sanitizing keeps inline styles.
func NewHTMLRenderer() *HTMLRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()

	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithParserOptions(parser.WithAttribute()),
		),
		policy: policy,
	}
}

// Render returns the sanitized HTML body with the stylesheet in front.
func (r *HTMLRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return Stylesheet + r.policy.Sanitize(buf.String()), nil
}
