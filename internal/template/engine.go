// Package template loads the five named templates a book render needs
// (page, index, sidebar, header, footer) from a user-supplied directory,
// falling back per-name to an embedded default, and exposes a
// render-by-name operation.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

//go:embed embedded/*.html
var embedded embed.FS

// Names is the fixed set of templates a Registry must resolve.
var Names = []string{"page", "index", "sidebar", "header", "footer"}

// ErrKind classifies a TemplateError.
type ErrKind int

const (
	ErrMissingPartial ErrKind = iota
	ErrRenderFailed
	ErrParseFailed
)

// TemplateError reports a fatal, per-page template problem.
type TemplateError struct {
	Kind ErrKind
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("template %q: missing", e.Name)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Registry holds the five resolved templates, each able to reference the
// others by name via {{template "sidebar" .}}.
type Registry struct {
	root *template.Template
}

// Load reads templateDir for each required name, falling back to the
// embedded default when the name is missing from templateDir (or when
// templateDir is empty). Every referenced partial resolves against the
// same combined set, so a page template can freely include header, footer,
// and sidebar.
func Load(templateDir string) (*Registry, error) {
	root := template.New("root").Funcs(FuncMap())

	for _, name := range Names {
		content, err := loadOne(templateDir, name)
		if err != nil {
			return nil, err
		}
		t := root.New(name)
		if _, err := t.Parse(content); err != nil {
			return nil, &TemplateError{Kind: ErrParseFailed, Name: name, Err: err}
		}
	}

	return &Registry{root: root}, nil
}

func loadOne(templateDir, name string) (string, error) {
	if templateDir != "" {
		p := filepath.Join(templateDir, name+".html")
		if data, err := os.ReadFile(p); err == nil {
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", &TemplateError{Kind: ErrParseFailed, Name: name, Err: err}
		}
	}
	data, err := embedded.ReadFile("embedded/" + name + ".html")
	if err != nil {
		return "", &TemplateError{Kind: ErrMissingPartial, Name: name, Err: err}
	}
	return string(data), nil
}

// Render executes the named template against ctx and returns the rendered
// bytes. A template body referencing a partial that failed to resolve at
// Load time will never reach here, since Load already parsed the full set.
func (r *Registry) Render(name string, ctx any) ([]byte, error) {
	t := r.root.Lookup(name)
	if t == nil {
		return nil, &TemplateError{Kind: ErrMissingPartial, Name: name}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return nil, &TemplateError{Kind: ErrRenderFailed, Name: name, Err: err}
	}
	return buf.Bytes(), nil
}

// HasTemplate reports whether name resolved during Load.
func (r *Registry) HasTemplate(name string) bool {
	return r.root.Lookup(name) != nil
}
