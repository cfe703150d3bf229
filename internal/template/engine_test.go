package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubContext struct {
	Title string
	Body  string
}

func TestLoadFallsBackToEmbeddedWhenNoDirGiven(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range Names {
		if !reg.HasTemplate(name) {
			t.Errorf("expected embedded template %q to resolve", name)
		}
	}
}

func TestLoadOverridesSingleNameFromUserDir(t *testing.T) {
	dir := t.TempDir()
	custom := `{{define "page"}}<custom>{{.Title}}</custom>{{end}}`
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := reg.Render("page", struct{ Title string }{Title: "Hi"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<custom>Hi</custom>") {
		t.Errorf("expected user override to render, got %s", out)
	}

	// footer.html was not overridden, so it should still resolve from the
	// embedded default.
	if !reg.HasTemplate("footer") {
		t.Error("expected footer to still resolve from embedded default")
	}
}

func TestRenderMissingTemplateIsTemplateError(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = reg.Render("does-not-exist", nil)
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	var terr *TemplateError
	if te, ok := err.(*TemplateError); !ok {
		t.Fatalf("got %T, want *TemplateError", err)
	} else {
		terr = te
	}
	if terr.Kind != ErrMissingPartial {
		t.Errorf("got kind %v, want ErrMissingPartial", terr.Kind)
	}
}
