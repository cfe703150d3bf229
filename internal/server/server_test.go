package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	return New(Options{OutputRoot: dir, NoLiveReload: true}), dir
}

func TestServeExistingFile(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hi</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	srv.handleRequest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if rec.Body.String() != "<html>hi</html>" {
		t.Errorf("got body %q", rec.Body.String())
	}
}

func TestServeDirectoryServesIndex(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.MkdirAll(filepath.Join(dir, "guide"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "guide", "index.html"), []byte("guide home"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/guide/", nil)
	rec := httptest.NewRecorder()
	srv.handleRequest(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "guide home" {
		t.Fatalf("got status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestServeMissingFileServesCustom404(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "404.html"), []byte("not here"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/nope.html", nil)
	rec := httptest.NewRecorder()
	srv.handleRequest(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
	if rec.Body.String() != "not here" {
		t.Errorf("got body %q, want custom 404 body", rec.Body.String())
	}
}

func TestServeMissingFileNoCustom404FallsBackToPlainText(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope.html", nil)
	rec := httptest.NewRecorder()
	srv.handleRequest(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestResolveFilePathRejectsTraversal(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(filepath.Dir(dir), "secret.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := srv.resolveFilePath("/../secret.txt"); got != "" {
		t.Errorf("expected traversal to be rejected, got %q", got)
	}
}
