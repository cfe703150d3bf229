// Package server serves a built output tree over HTTP and pushes reload
// notifications to connected browsers over a WebSocket, per the dev
// supervisor's three-task design.
package server

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures a Server.
type Options struct {
	Port         int
	Bind         string
	OutputRoot   string
	NoLiveReload bool
}

// Server serves OutputRoot over plain HTTP and upgrades /live-reload to a
// WebSocket that broadcasts "reload" on each successful rebuild.
type Server struct {
	options Options
	hub     *Hub
	http    *http.Server
}

// New creates a Server. Call Start to begin serving.
func New(opts Options) *Server {
	return &Server{options: opts, hub: NewHub()}
}

// NotifyReload broadcasts a reload frame to every connected client.
func (s *Server) NotifyReload() {
	s.hub.Broadcast([]byte("reload"))
}

// ClientCount reports the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully. A bind failure returns immediately with an error.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run()
	defer s.hub.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/live-reload", s.hub.HandleWS)
	mux.HandleFunc("/", s.handleRequest)

	addr := fmt.Sprintf("%s:%d", s.options.Bind, s.options.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", addr, err)
	}

	s.http = &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	log.Printf("serving %s at http://%s", s.options.OutputRoot, addr)
	if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	path := s.resolveFilePath(r.URL.Path)
	if path == "" {
		s.handle404(w)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.handle404(w)
		return
	}

	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if !s.options.NoLiveReload && isHTML(ext, contentType) {
		data = InjectLiveReload(data)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// resolveFilePath maps a URL path to a file under OutputRoot, guarding
// against path traversal and supporting directory- and extensionless-URL
// fallbacks to index.html.
func (s *Server) resolveFilePath(urlPath string) string {
	cleaned := filepath.Clean(urlPath)
	if strings.Contains(cleaned, "..") {
		return ""
	}
	full := filepath.Join(s.options.OutputRoot, filepath.FromSlash(cleaned))

	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			return full
		}
		index := filepath.Join(full, "index.html")
		if _, err := os.Stat(index); err == nil {
			return index
		}
		return ""
	}

	if htmlPath := full + ".html"; fileExists(htmlPath) {
		return htmlPath
	}
	if index := filepath.Join(full, "index.html"); fileExists(index) {
		return index
	}
	return ""
}

// handle404 serves 404.html from the output root when present, per the
// SPA-fallback-vs-404 choice this build makes: an explicit 404 page, not
// a 200 index.html fallback.
func (s *Server) handle404(w http.ResponseWriter) {
	notFound := filepath.Join(s.options.OutputRoot, "404.html")
	if data, err := os.ReadFile(notFound); err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(data)
		return
	}
	http.Error(w, "404 page not found", http.StatusNotFound)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isHTML(ext, contentType string) bool {
	if ext == ".html" || ext == ".htm" {
		return true
	}
	return bytes.Contains([]byte(contentType), []byte("text/html"))
}
