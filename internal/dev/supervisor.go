// Package dev implements the dev-mode supervisor: a debounced watcher, a
// serialized rebuilder, and the HTTP/WebSocket server, connected by a
// broadcast reload channel. This mirrors the teacher's three-goroutine
// server/watcher/hub shape (internal/server) but drives a full rebuild
// callback instead of a fixed pipeline.
package dev

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leaflet-docs/leaflet/internal/server"
)

// DebounceDelay is the recommended fixed watcher debounce, per the dev
// supervisor's watch-burst-coalescing contract.
const DebounceDelay = 300 * time.Millisecond

// Options configures a Supervisor.
type Options struct {
	InputRoot    string
	OutputRoot   string
	Port         int
	Bind         string
	NoLiveReload bool
	Watch        bool
}

// Supervisor owns the watcher, rebuilder, and HTTP server tasks and the
// broadcast channel connecting them.
type Supervisor struct {
	opts    Options
	rebuild func() error
	srv     *server.Server
	watcher *server.Watcher

	trigger chan struct{}
}

// New creates a Supervisor. rebuild runs the full C1-C9 pipeline; it is
// called for every debounced file-system change while Watch is enabled.
// Run does not call it before serving, so the caller performs the initial
// build.
func New(opts Options, rebuild func() error) *Supervisor {
	return &Supervisor{
		opts:    opts,
		rebuild: rebuild,
		srv:     server.New(server.Options{Port: opts.Port, Bind: opts.Bind, OutputRoot: opts.OutputRoot, NoLiveReload: opts.NoLiveReload}),
		trigger: make(chan struct{}, 1),
	}
}

// Run blocks serving the output directory (and, if Watch is set,
// rebuilding on change) until ctx is cancelled. A failing rebuild logs
// and keeps serving the last good output; a crashing watcher is
// restarted once before the process aborts; a server bind failure
// aborts immediately.
func (s *Supervisor) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if s.opts.Watch {
		go s.runRebuildLoop(ctx)
		s.watcher = server.NewWatcher([]string{s.opts.InputRoot}, DebounceDelay, s.requestRebuild)
		go func() {
			if err := s.runWatcherWithRestart(); err != nil {
				errCh <- fmt.Errorf("dev: watcher: %w", err)
			}
		}()
	}

	go func() {
		if err := s.srv.Start(ctx); err != nil {
			errCh <- fmt.Errorf("dev: server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		if s.watcher != nil {
			s.watcher.Stop()
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// requestRebuild is the watcher's onChange callback: a non-blocking send
// into a capacity-1 channel. While a tick is already queued, further
// calls are dropped; a call made while a rebuild is running queues one
// tick — exactly one pending tick survives per burst, satisfying the
// "serialized, coalesced" rebuild contract.
func (s *Supervisor) requestRebuild() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// runRebuildLoop is Task B: it drains trigger one at a time, running the
// rebuild callback fully before considering the next tick. Because
// trigger has capacity one, any ticks that arrive mid-rebuild collapse
// into a single pending element already waiting when this rebuild
// finishes.
func (s *Supervisor) runRebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			if err := s.rebuild(); err != nil {
				log.Printf("dev: rebuild failed: %v", err)
				continue
			}
			s.srv.NotifyReload()
		}
	}
}

// runWatcherWithRestart runs the watcher, restarting it once on failure
// before giving up, per the dev supervisor's per-task error policy.
func (s *Supervisor) runWatcherWithRestart() error {
	if err := s.watcher.Start(); err != nil {
		log.Printf("dev: watcher crashed, restarting once: %v", err)
		s.watcher = server.NewWatcher([]string{s.opts.InputRoot}, DebounceDelay, s.requestRebuild)
		return s.watcher.Start()
	}
	return nil
}
