// Package markdown renders Markdown source to HTML: flavor-selectable
// parsing, syntax highlighting of fenced code with a mermaid passthrough
// and unknown-language downgrade, raw-HTML gating, and post-parse
// rewriting of intra-doc .md links to .html.
package markdown

import (
	"bytes"
	stdhtml "html"
	"log"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/wikilink"
)

// Flavor selects the Markdown dialect used to parse a document.
type Flavor string

const (
	FlavorPlain Flavor = "markdown"
	FlavorGFM   Flavor = "gfm"
	FlavorMDX   Flavor = "mdx"
)

// HighlightStyle is the fixed chroma theme used for syntax highlighting,
// matching the "pre-built syntax set and a fixed theme" requirement.
const HighlightStyle = "github"

// Options configures a Renderer.
type Options struct {
	Flavor       Flavor
	Highlight    bool
	AllowRawHTML bool
}

// Renderer converts Markdown source into HTML per Options.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer for the given options.
func New(opts Options) *Renderer {
	var extensions []goldmark.Extender
	switch opts.Flavor {
	case FlavorGFM:
		extensions = append(extensions, extension.GFM)
	case FlavorMDX:
		extensions = append(extensions, extension.GFM, extension.Typographer, &wikilink.Extender{})
	case FlavorPlain:
		// No extensions: pure CommonMark.
	default:
		extensions = append(extensions, extension.GFM)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(mdLinkTransformer{}, 100)),
		),
		goldmark.WithExtensions(
			&codeHighlightExtension{highlight: opts.Highlight},
			&rawHTMLExtension{allowRawHTML: opts.AllowRawHTML},
			linkRewriteExtension{},
		),
	)

	return &Renderer{md: md}
}

// Render converts source Markdown into HTML bytes. Malformed input never
// fails rendering; goldmark degrades gracefully rather than erroring.
func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// codeHighlightExtension wires renderFencedCodeBlock in as the sole
// renderer for ast.KindFencedCodeBlock, overriding goldmark's default
// escape-and-wrap behavior with the mermaid/highlight/plain-fallback
// three-way split the fenced-code contract requires.
type codeHighlightExtension struct {
	highlight bool
}

func (e *codeHighlightExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&fencedCodeRenderer{highlight: e.highlight}, 100),
	))
}

type fencedCodeRenderer struct {
	highlight bool
}

func (r *fencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fencedCodeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.FencedCodeBlock)
	language := string(node.Language(source))

	var code []byte
	for i := 0; i < node.Lines().Len(); i++ {
		line := node.Lines().At(i)
		code = append(code, line.Value(source)...)
	}

	switch {
	case language == "mermaid":
		w.WriteString(`<pre class="mermaid">`)
		w.WriteString(stdhtml.EscapeString(string(code)))
		w.WriteString("</pre>\n")
	case r.highlight && language != "":
		if !writeHighlighted(w, language, code) {
			writePlainCode(w, code)
		}
	default:
		writePlainCode(w, code)
	}
	return ast.WalkSkipChildren, nil
}

// writeHighlighted attempts chroma tokenize-then-style rendering. It
// returns false when the language has no known lexer or highlighting
// itself fails, in which case the caller falls back to a plain block; a
// lookup or format failure is logged as a diagnostic but never aborts the
// page render.
func writeHighlighted(w util.BufWriter, language string, code []byte) bool {
	lexer := lexers.Get(language)
	if lexer == nil {
		log.Printf("markdown: no lexer for %q, rendering code block unhighlighted", language)
		return false
	}
	iterator, err := lexer.Tokenise(nil, string(code))
	if err != nil {
		log.Printf("markdown: tokenizing %s code block: %v", language, err)
		return false
	}
	formatter := html.New(html.WithClasses(true))
	style := styles.Get(HighlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	if err := formatter.Format(w, style, iterator); err != nil {
		log.Printf("markdown: formatting %s code block: %v", language, err)
		return false
	}
	return true
}

func writePlainCode(w util.BufWriter, code []byte) {
	w.WriteString("<pre><code>")
	w.WriteString(stdhtml.EscapeString(string(code)))
	w.WriteString("</code></pre>\n")
}

// rawHTMLExtension overrides goldmark's default handling of raw HTML nodes.
// goldmark's stock renderer, when not running in Unsafe mode, replaces raw
// HTML with a "<!-- raw HTML omitted -->" placeholder comment; leaflet's
// contract instead requires the raw markup be escaped into visible text, so
// a disallowed <script> tag reads as inert text rather than vanishing.
type rawHTMLExtension struct {
	allowRawHTML bool
}

func (e *rawHTMLExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&rawHTMLRenderer{allowRawHTML: e.allowRawHTML}, 100),
	))
}

type rawHTMLRenderer struct {
	allowRawHTML bool
}

func (r *rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
}

func (r *rawHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.RawHTML)
	for i := 0; i < node.Segments.Len(); i++ {
		seg := node.Segments.At(i)
		r.writeSegment(w, seg.Value(source))
	}
	return ast.WalkSkipChildren, nil
}

func (r *rawHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.HTMLBlock)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.writeSegment(w, line.Value(source))
	}
	if node.HasClosure() {
		r.writeSegment(w, node.ClosureLine.Value(source))
	}
	return ast.WalkSkipChildren, nil
}

// writeSegment emits one raw-HTML segment, either verbatim (when raw HTML
// is allowed) or entity-escaped into plain text (when it isn't).
func (r *rawHTMLRenderer) writeSegment(w util.BufWriter, raw []byte) {
	if r.allowRawHTML {
		w.Write(raw)
		return
	}
	w.WriteString(stdhtml.EscapeString(string(raw)))
}
