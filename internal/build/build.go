// Package build orchestrates the full documentation-site pipeline: source
// walk, navigation build, markdown rendering with syntax highlighting,
// template rendering, and a trailing, non-fatal search-indexing pass.
package build

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/leaflet-docs/leaflet/internal/assets"
	"github.com/leaflet-docs/leaflet/internal/config"
	"github.com/leaflet-docs/leaflet/internal/content"
	"github.com/leaflet-docs/leaflet/internal/markdown"
	"github.com/leaflet-docs/leaflet/internal/nav"
	"github.com/leaflet-docs/leaflet/internal/search"
	tmpl "github.com/leaflet-docs/leaflet/internal/template"
)

// Result summarizes a completed build.
type Result struct {
	PagesRendered int
	Duration      time.Duration
	SearchIndexed bool
	SearchWarning error
}

// Run executes one full build for cfg: it discovers content, renders every
// page, writes the output tree, and — when search is enabled — runs the
// external indexer over the finished tree. A search-indexer failure is
// recorded on Result.SearchWarning rather than failing the build.
func Run(ctx context.Context, cfg *config.BookConfig) (*Result, error) {
	start := time.Now()

	registry, err := tmpl.Load(cfg.Paths.Templates)
	if err != nil {
		return nil, fmt.Errorf("build: loading templates: %w", err)
	}

	if err := assets.Copy(cfg.Paths.Templates, cfg.Paths.Output); err != nil {
		return nil, fmt.Errorf("build: copying static assets: %w", err)
	}

	pages, err := content.Walk(cfg.Paths.Input)
	if err != nil {
		return nil, fmt.Errorf("build: walking %s: %w", cfg.Paths.Input, err)
	}

	model := nav.Build(pages)

	renderer := markdown.New(markdown.Options{
		Flavor:       markdown.Flavor(cfg.Markdown.Format),
		Highlight:    true,
		AllowRawHTML: cfg.Output.HTML.AllowHTML,
	})

	bodies, err := renderBodies(pages, renderer)
	if err != nil {
		return nil, err
	}

	var indexPage *content.SourcePage
	for i := range pages {
		if pages[i].OutputPath == "index.html" {
			indexPage = &pages[i]
			break
		}
	}

	for _, p := range pages {
		if indexPage != nil && p.OutputPath == indexPage.OutputPath {
			continue
		}
		prev, next := model.PrevNext(p.OutputPath)
		renderCtx := RenderContext{
			Config:      *cfg,
			Title:       p.Title,
			Body:        template.HTML(bodies[p.OutputPath]),
			OutputPath:  p.OutputPath,
			CurrentPath: p.OutputPath,
			Prev:        navLink(prev),
			Next:        navLink(next),
			Nav:         model,
			HasIndex:    false,
		}
		rendered, err := registry.Render("page", renderCtx)
		if err != nil {
			return nil, fmt.Errorf("build: rendering %s: %w", p.OutputPath, err)
		}
		if err := writeOutputFile(cfg.Paths.Output, p.OutputPath, rendered); err != nil {
			return nil, err
		}
	}

	// The index page, whether it is an explicit index.md or a
	// synthesized landing page, always goes through the "index"
	// template rather than "page" — C8's contract is that the front
	// page gets index furniture (a card grid over the nav when there is
	// no body), not the page template's prev/next furniture.
	indexCtx := RenderContext{
		Config:      *cfg,
		Title:       cfg.Book.Title,
		OutputPath:  "index.html",
		CurrentPath: "index.html",
		Nav:         model,
		HasIndex:    indexPage != nil,
	}
	if indexPage != nil {
		indexCtx.Title = indexPage.Title
		indexCtx.Body = template.HTML(bodies[indexPage.OutputPath])
	}
	rendered, err := registry.Render("index", indexCtx)
	if err != nil {
		return nil, fmt.Errorf("build: rendering index: %w", err)
	}
	if err := writeOutputFile(cfg.Paths.Output, "index.html", rendered); err != nil {
		return nil, err
	}

	result := &Result{
		PagesRendered: len(pages),
		Duration:      time.Since(start),
	}

	if cfg.Search.Enable {
		timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
		if err := search.Index(ctx, cfg.Paths.Output, timeout); err != nil {
			result.SearchWarning = err
		} else {
			result.SearchIndexed = true
		}
	}

	return result, nil
}

func navLink(p *content.SourcePage) *NavLink {
	if p == nil {
		return nil
	}
	return &NavLink{Title: p.Title, Path: p.OutputPath}
}

// renderBodies runs markdown rendering across a worker pool sized to
// runtime.NumCPU, keyed by output path so callers don't need render order
// to match discovery order.
func renderBodies(pages []content.SourcePage, renderer *markdown.Renderer) (map[string][]byte, error) {
	workers := runtime.NumCPU()
	if workers > len(pages) {
		workers = len(pages)
	}
	if workers == 0 {
		return map[string][]byte{}, nil
	}

	jobs := make(chan content.SourcePage, len(pages))
	for _, p := range pages {
		jobs <- p
	}
	close(jobs)

	var mu sync.Mutex
	bodies := make(map[string][]byte, len(pages))
	errCh := make(chan error, 1)
	var once sync.Once
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				source, err := os.ReadFile(p.InputPath)
				if err != nil {
					once.Do(func() { errCh <- err })
					return
				}
				html, err := renderer.Render(source)
				if err != nil {
					once.Do(func() { errCh <- fmt.Errorf("build: rendering %s: %w", p.InputPath, err) })
					return
				}
				mu.Lock()
				bodies[p.OutputPath] = html
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, err
	}
	return bodies, nil
}
