package formatter

import (
	"io"
	"regexp"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const externalAttrs = `target="_blank" rel="noopener noreferrer"`

var (
	anchorTagRe   = regexp.MustCompile(`(?i)<a\b([^>]*)>`)
	targetRelAttr = regexp.MustCompile(`(?i)\s(?:target|rel)\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
)

// externalizeAnchors rewrites raw <a> tags so they open in a new view,
// replacing any target or rel the author gave them.
func externalizeAnchors(raw []byte) []byte {
	return anchorTagRe.ReplaceAllFunc(raw, func(tag []byte) []byte {
		attrs := anchorTagRe.FindSubmatch(tag)[1]
		attrs = targetRelAttr.ReplaceAll(attrs, nil)
		out := make([]byte, 0, len(tag)+len(externalAttrs)+1)
		out = append(out, "<a"...)
		out = append(out, attrs...)
		out = append(out, ' ')
		out = append(out, externalAttrs...)
		return append(out, '>')
	})
}

// RenderMarkdown converts Markdown to HTML. Every link, raw HTML anchors
// included, opens in a new view, and every image not already inside a link
// is wrapped in a link to itself.
func RenderMarkdown(text string) string {
	if text == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)

	var r *html.Renderer
	linkDepth := 0
	hook := func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		switch n := node.(type) {
		case *ast.Link:
			if entering {
				linkDepth++
				n.AdditionalAttributes = append(n.AdditionalAttributes, `target="_blank"`, `rel="noopener noreferrer"`)
			} else {
				linkDepth--
			}
			return ast.GoToNext, false
		case *ast.HTMLSpan:
			n.Literal = externalizeAnchors(n.Literal)
			return ast.GoToNext, false
		case *ast.HTMLBlock:
			n.Literal = externalizeAnchors(n.Literal)
			return ast.GoToNext, false
		case *ast.Image:
			if linkDepth > 0 {
				return ast.GoToNext, false
			}
			if entering {
				io.WriteString(w, `<a href="`)
				html.EscLink(w, n.Destination)
				io.WriteString(w, `" `+externalAttrs+` class="image-link">`)
				r.Image(w, n, true)
			} else {
				r.Image(w, n, false)
				io.WriteString(w, `</a>`)
			}
			return ast.GoToNext, true
		}
		return ast.GoToNext, false
	}

	r = html.NewRenderer(html.RendererOptions{
		Flags:          html.CommonFlags | html.LazyLoadImages,
		RenderNodeHook: hook,
	})
	return string(markdown.ToHTML([]byte(text), p, r))
}
