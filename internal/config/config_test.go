package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	d := Default()
	if d.Book.Title != "My Book" {
		t.Errorf("Title: got %q, want %q", d.Book.Title, "My Book")
	}
	if d.Book.Language != "en" {
		t.Errorf("Language: got %q, want %q", d.Book.Language, "en")
	}
	if d.Markdown.Format != FlavorGFM {
		t.Errorf("Markdown.Format: got %q, want %q", d.Markdown.Format, FlavorGFM)
	}
	if d.Search.LimitResults != 20 {
		t.Errorf("Search.LimitResults: got %d, want 20", d.Search.LimitResults)
	}
}

func TestResolveRequiresInputAndOutput(t *testing.T) {
	if _, err := Resolve(Overrides{}); err == nil {
		t.Fatal("expected error for missing --input/--output")
	}
}

func TestResolveDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	cfg, err := Resolve(Overrides{Input: dir, Output: out})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Book.Title != "My Book" {
		t.Errorf("Title: got %q, want %q", cfg.Book.Title, "My Book")
	}
	if cfg.Paths.Input != mustAbs(t, dir) {
		t.Errorf("Paths.Input: got %q, want %q", cfg.Paths.Input, mustAbs(t, dir))
	}
}

func TestResolveDefaultConfigInInputRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.toml"), `
[book]
title = "Test Book"
language = "fr"
`)

	cfg, err := Resolve(Overrides{Input: dir, Output: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Book.Title != "Test Book" {
		t.Errorf("Title: got %q, want %q", cfg.Book.Title, "Test Book")
	}
	if cfg.Book.Language != "fr" {
		t.Errorf("Language: got %q, want %q", cfg.Book.Language, "fr")
	}
}

func TestResolveMultipleDefaultConfigsIsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.toml"), `[book]
title = "A"`)
	writeFile(t, filepath.Join(dir, "book.json"), `{"book":{"title":"B"}}`)

	_, err := Resolve(Overrides{Input: dir, Output: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected MultipleConfigs error")
	}
	var cerr *ConfigError
	if !asConfigError(err, &cerr) || cerr.Kind != ErrMultipleConfigs {
		t.Fatalf("got %v, want ErrMultipleConfigs", err)
	}
}

func TestResolveExplicitConfigOverridesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.toml"), `[book]
title = "Default File Title"`)
	explicit := filepath.Join(dir, "custom.toml")
	writeFile(t, explicit, `[book]
title = "Explicit Title"`)

	cfg, err := Resolve(Overrides{Input: dir, Output: filepath.Join(dir, "out"), ConfigPath: explicit})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Book.Title != "Explicit Title" {
		t.Errorf("Title: got %q, want %q", cfg.Book.Title, "Explicit Title")
	}
}

func TestResolveEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.toml"), `[book]
title = "File Title"`)

	t.Setenv("LEAFLET_BOOK_TITLE", "Env Title")

	cfg, err := Resolve(Overrides{Input: dir, Output: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Book.Title != "Env Title" {
		t.Errorf("Title: got %q, want %q", cfg.Book.Title, "Env Title")
	}
}

func TestResolveUnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.toml"), `[book]
title = "T"
nickname = "oops"`)

	_, err := Resolve(Overrides{Input: dir, Output: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected UnknownField error")
	}
	var cerr *ConfigError
	if !asConfigError(err, &cerr) || cerr.Kind != ErrUnknownField {
		t.Fatalf("got %v, want ErrUnknownField", err)
	}
}

func TestResolveMissingInputDir(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve(Overrides{Input: filepath.Join(dir, "nope"), Output: filepath.Join(dir, "out")})
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func asConfigError(err error, target **ConfigError) bool {
	if ce, ok := err.(*ConfigError); ok {
		*target = ce
		return true
	}
	return false
}
