package build

import (
	"html/template"

	"github.com/leaflet-docs/leaflet/internal/config"
	"github.com/leaflet-docs/leaflet/internal/nav"
)

// NavLink is a lightweight prev/next pointer handed to a template.
type NavLink struct {
	Title string
	Path  string
}

// RenderContext is passed to the "page" and "index" templates. It carries
// everything a template needs: the rendered page itself, its neighbors in
// the linear ordering, the full navigation for the sidebar, and the
// resolved book configuration for site-wide metadata.
type RenderContext struct {
	Config      config.BookConfig
	Title       string
	Body        template.HTML
	OutputPath  string
	CurrentPath string
	Prev        *NavLink
	Next        *NavLink
	Nav         nav.Model
	HasIndex    bool
}
