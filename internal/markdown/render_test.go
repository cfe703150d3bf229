package markdown

import (
	"strings"
	"testing"
)

func render(t *testing.T, opts Options, source string) string {
	t.Helper()
	r := New(opts)
	out, err := r.Render([]byte(source))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestGFMTableRendersOnlyWithGFMFlavor(t *testing.T) {
	source := "| a | b |\n|---|---|\n| 1 | 2 |\n"

	plain := render(t, Options{Flavor: FlavorPlain}, source)
	if strings.Contains(plain, "<table>") {
		t.Errorf("plain flavor rendered a table: %s", plain)
	}

	gfm := render(t, Options{Flavor: FlavorGFM}, source)
	if !strings.Contains(gfm, "<table>") {
		t.Errorf("gfm flavor did not render a table: %s", gfm)
	}
}

func TestUnknownLanguageFallsBackToPlain(t *testing.T) {
	source := "```zzz\nfoo\n```\n"
	out := render(t, Options{Flavor: FlavorGFM, Highlight: true}, source)
	if !strings.Contains(out, "<pre><code>foo") {
		t.Errorf("expected plain fallback, got: %s", out)
	}
	if strings.Contains(out, "<span") {
		t.Errorf("did not expect token spans for unknown language: %s", out)
	}
}

func TestKnownLanguageHighlights(t *testing.T) {
	source := "```go\nfunc main() {}\n```\n"
	out := render(t, Options{Flavor: FlavorGFM, Highlight: true}, source)
	if !strings.Contains(out, "<span") {
		t.Errorf("expected highlighted spans, got: %s", out)
	}
}

func TestMermaidPassesThroughUnhighlighted(t *testing.T) {
	source := "```mermaid\ngraph TD; A-->B;\n```\n"
	out := render(t, Options{Flavor: FlavorGFM, Highlight: true}, source)
	if !strings.Contains(out, `<pre class="mermaid">`) {
		t.Errorf("expected mermaid passthrough, got: %s", out)
	}
	if strings.Contains(out, "<span") {
		t.Errorf("mermaid block should not be highlighted: %s", out)
	}
}

func TestRawHTMLGate(t *testing.T) {
	source := "<script>alert(1)</script>\n"

	escaped := render(t, Options{Flavor: FlavorGFM, AllowRawHTML: false}, source)
	if !strings.Contains(escaped, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag, got: %s", escaped)
	}

	raw := render(t, Options{Flavor: FlavorGFM, AllowRawHTML: true}, source)
	if !strings.Contains(raw, "<script>alert(1)</script>") {
		t.Errorf("expected raw script tag to pass through, got: %s", raw)
	}
}

func TestLinkRewriteMdToHtml(t *testing.T) {
	out := render(t, Options{Flavor: FlavorGFM}, "[next](../index.md)\n")
	if !strings.Contains(out, `href="../index.html"`) {
		t.Errorf("expected rewritten href, got: %s", out)
	}
}

func TestLinkRewriteIgnoresExternalAndFragments(t *testing.T) {
	out := render(t, Options{Flavor: FlavorGFM}, "[a](https://example.com/x.md) [b](#section)\n")
	if !strings.Contains(out, `href="https://example.com/x.md"`) {
		t.Errorf("external link should be untouched, got: %s", out)
	}
	if !strings.Contains(out, `href="#section"`) {
		t.Errorf("fragment-only link should be untouched, got: %s", out)
	}
}

func TestLinkRewriteIsIdempotent(t *testing.T) {
	// A destination already ending in .html never matches the transformer's
	// ".md" suffix check, so rendering it directly must produce the same
	// href as rendering the .md source that gets rewritten to it.
	rewritten := render(t, Options{Flavor: FlavorGFM}, "[next](guide.md)\n")
	alreadyHTML := render(t, Options{Flavor: FlavorGFM}, "[next](guide.html)\n")
	if rewritten != alreadyHTML {
		t.Errorf("link rewrite is not idempotent:\nrewritten:    %s\nalready-html: %s", rewritten, alreadyHTML)
	}
}

func TestLinkRewriteCoversAutoLink(t *testing.T) {
	out := render(t, Options{Flavor: FlavorGFM}, "<file:guide.md>\n")
	if !strings.Contains(out, `href="file:guide.html"`) {
		t.Errorf("expected rewritten autolink href, got: %s", out)
	}
}

func TestLinkRewriteAutoLinkIgnoresExternalScheme(t *testing.T) {
	out := render(t, Options{Flavor: FlavorGFM}, "<https://example.com/x.md>\n")
	if !strings.Contains(out, `href="https://example.com/x.md"`) {
		t.Errorf("external autolink should be untouched, got: %s", out)
	}
}

func TestExtractTitleIgnoresHeadingInsideCodeFence(t *testing.T) {
	source := "```\n# not a heading\n```\n\n# Real Title\n"
	title, ok := ExtractTitle([]byte(source))
	if !ok || title != "Real Title" {
		t.Errorf("got (%q, %v), want (%q, true)", title, ok, "Real Title")
	}
}

func TestExtractTitleCollectsTextInsideInlineMarkup(t *testing.T) {
	source := "# Title with **bold** and *italic* and `code` and [a link](x.md)\n"
	title, ok := ExtractTitle([]byte(source))
	want := "Title with bold and italic and code and a link"
	if !ok || title != want {
		t.Errorf("got (%q, %v), want (%q, true)", title, ok, want)
	}
}

func TestExtractTitleNoHeading(t *testing.T) {
	_, ok := ExtractTitle([]byte("just some text\n"))
	if ok {
		t.Error("expected no title found")
	}
}
