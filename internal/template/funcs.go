package template

import (
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// FuncMap returns the custom template functions available to every leaflet
// template. Partial inclusion itself uses html/template's built-in
// {{template "name" .}} construct against the Registry's fixed name set,
// so no dynamic partial-lookup function is needed here.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"safeHTML":  safeHTML,
		"prettify":  prettify,
		"isActive":  isActive,
		"hasPrefix": strings.HasPrefix,
	}
}

// safeHTML marks a string as pre-sanitized HTML, for injecting already
// rendered page bodies into a page template without re-escaping.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// prettify turns a raw section key or file stem ("getting-started",
// "getting_started") into a display title ("Getting Started").
func prettify(s string) string {
	if s == "" {
		return ""
	}
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return titleCaser.String(replaced)
}

// isActive reports whether the current render path matches candidate,
// used by the sidebar template to mark the active link.
func isActive(current, candidate string) bool {
	return current == candidate
}
