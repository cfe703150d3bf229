package markdown

import (
	stdhtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// externalSchemes are link destinations left untouched by rewriting,
// grounded on the "no scheme" test in transformLinksMdToHtml's regex
// (which only matched bare relative hrefs) generalized to an explicit
// scheme allowlist rather than a negative-lookahead-free regex.
var externalSchemes = []string{"http:", "https:", "mailto:", "//"}

// mdLinkTransformer rewrites *ast.Link destinations ending in .md (or
// .md#fragment, .md?query) to the .html equivalent, at parse time rather
// than as a post-render string regexp. Operating on the AST means the
// rewrite composes correctly with the rest of the render pipeline and is
// idempotent by construction: a destination already ending in .html never
// matches the ".md" suffix check, so re-running the transformer on
// already-rewritten output is a no-op.
type mdLinkTransformer struct{}

func (mdLinkTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if rewritten, ok := rewriteMdDestination(string(link.Destination)); ok {
			link.Destination = []byte(rewritten)
		}
		return ast.WalkContinue, nil
	})
}

// rewriteMdDestination replaces a trailing .md with .html when dest has no
// scheme, preserving any query string or fragment. It reports whether a
// rewrite was made.
func rewriteMdDestination(dest string) (string, bool) {
	if isExternal(dest) {
		return dest, false
	}

	path, suffix := dest, ""
	if idx := strings.IndexAny(dest, "?#"); idx >= 0 {
		path, suffix = dest[:idx], dest[idx:]
	}
	if !strings.HasSuffix(path, ".md") {
		return dest, false
	}
	return strings.TrimSuffix(path, ".md") + ".html" + suffix, true
}

func isExternal(dest string) bool {
	for _, scheme := range externalSchemes {
		if strings.HasPrefix(dest, scheme) {
			return true
		}
	}
	return false
}

// linkRewriteExtension wires autoLinkRenderer in to cover *ast.AutoLink,
// the one link shape mdLinkTransformer's AST-mutation approach can't reach:
// goldmark's AutoLink node has no settable destination field, only a
// URL(source) accessor computed from raw source bytes, so a bare autolink
// to a .md file has to be rewritten at render time instead of parse time.
type linkRewriteExtension struct{}

func (linkRewriteExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(autoLinkRenderer{}, 100),
	))
}

type autoLinkRenderer struct{}

func (autoLinkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindAutoLink, renderAutoLink)
}

func renderAutoLink(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.AutoLink)

	url := string(node.URL(source))
	if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
		url = "mailto:" + url
	}
	if rewritten, ok := rewriteMdDestination(url); ok {
		url = rewritten
	}

	w.WriteString(`<a href="`)
	w.WriteString(stdhtml.EscapeString(url))
	w.WriteString(`">`)
	w.WriteString(stdhtml.EscapeString(string(node.Label(source))))
	w.WriteString(`</a>`)
	return ast.WalkSkipChildren, nil
}
