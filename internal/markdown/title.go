package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var titleParser = goldmark.New().Parser()

// ExtractTitle scans source for the first heading of level one and returns
// its plain-text content. Walking the parsed AST (rather than scanning
// lines for a "# " prefix) means a "# " that appears inside a fenced code
// block is never mistaken for a heading.
func ExtractTitle(source []byte) (string, bool) {
	reader := text.NewReader(source)
	doc := titleParser.Parse(reader)

	var title string
	var found bool
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 1 {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		ast.Walk(heading, func(inner ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			if txt, ok := inner.(*ast.Text); ok {
				buf.Write(txt.Value(source))
			}
			return ast.WalkContinue, nil
		})
		title = buf.String()
		found = true
		return ast.WalkSkipChildren, nil
	})
	return title, found
}
