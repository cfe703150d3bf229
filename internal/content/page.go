// Package content walks an input root for Markdown source files and
// extracts each one's display title.
package content

// SourcePage is one discovered Markdown file.
type SourcePage struct {
	// InputPath is the absolute path to the source .md file.
	InputPath string
	// OutputPath is the output-relative path with .md swapped for .html,
	// e.g. "guide/intro.html". Forward-slash separated regardless of OS.
	OutputPath string
	// Title is extracted from the first level-one heading, or falls back
	// to a prettified file stem when the document has none.
	Title string
	// Section is the top-level input-relative directory name, or "" for
	// files directly under the input root.
	Section string
}
