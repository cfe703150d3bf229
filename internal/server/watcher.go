package server

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// relevantExts are the file extensions whose changes matter to a
// rebuild. A markdown source tree is typically edited alongside a
// editor's own scratch files (`.swp`, `~`-backup files, `.git/` index
// churn from an IDE); reacting to those would burn a rebuild for every
// keystroke an editor persists that isn't actually new page content.
var relevantExts = map[string]bool{
	".md": true,
}

// Watcher subscribes to file-system events under a set of paths and
// invokes onChange once for each debounced burst of *.md activity. A
// burst of editor-save events within debounce of each other collapses
// into a single onChange call.
type Watcher struct {
	paths    []string
	onChange func()
	debounce time.Duration
	watcher  *fsnotify.Watcher
	done     chan struct{}
	once     sync.Once
}

// NewWatcher creates a Watcher over paths. onChange fires debounce after
// the last relevant event in a burst.
func NewWatcher(paths []string, debounce time.Duration, onChange func()) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: debounce,
		done:     make(chan struct{}),
	}
}

// Start begins watching and blocks until Stop is called or the underlying
// fsnotify watcher fails to initialize.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.IsDir() {
			if err := w.addRecursive(p); err != nil {
				log.Printf("watcher: failed to watch %s: %v", p, err)
			}
			continue
		}
		if err := fsw.Add(p); err != nil {
			log.Printf("watcher: failed to watch %s: %v", p, err)
		}
	}

	var timer *time.Timer
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, &timer)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return fsw.Close()
		}
	}
}

// handleEvent decides whether event should (re)start the debounce timer.
// A newly created directory is always watched recursively, regardless of
// relevance, since a .md file may land inside it moments later; only
// regular-file events are filtered down to relevantExts.
func (w *Watcher) handleEvent(event fsnotify.Event, timer **time.Timer) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	isDir := false
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			isDir = true
			_ = w.addRecursive(event.Name)
		}
	}

	if !isDir && !relevantExts[filepath.Ext(event.Name)] {
		return
	}

	if *timer != nil {
		(*timer).Stop()
	}
	*timer = time.AfterFunc(w.debounce, w.onChange)
}

// Stop signals the watcher's event loop to exit.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}
