package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ImportSettle is how long a file must stay unchanged before it is imported.
const ImportSettle = 500 * time.Millisecond

// ─────────────────────────────────────────────────────────────
// ImportWatcher — imports *.json files dropped into a directory
// ─────────────────────────────────────────────────────────────

// ImportWatcher imports every JSON file written or created in a directory.
// Bursts of writes to one file collapse into a single import.
type ImportWatcher struct {
	pages  *PageService
	dir    string
	settle time.Duration
	log    zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewImportWatcher creates a watcher over dir.
func NewImportWatcher(pages *PageService, dir string, log zerolog.Logger) *ImportWatcher {
	return &ImportWatcher{pages: pages, dir: dir, settle: ImportSettle, log: log}
}

// Start begins watching. Stop ends it.
func (w *ImportWatcher) Start(ctx context.Context) error {
	w.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("import watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("import watcher: watch %q: %w", w.dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.mu.Lock()
	w.watcher, w.cancel, w.done = watcher, cancel, done
	w.mu.Unlock()

	go w.loop(watchCtx, watcher, done)
	w.log.Info().Str("dir", w.dir).Msg("watching for imports")
	return nil
}

func (w *ImportWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			path := event.Name
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.settle, func() {
				if ctx.Err() != nil {
					return
				}
				if _, err := w.pages.ImportFile(ctx, path); err != nil {
					w.log.Error().Err(err).Str("path", path).Msg("import failed")
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("import watcher error")
		}
	}
}

// Stop ends watching. It is safe to call more than once.
func (w *ImportWatcher) Stop() {
	w.mu.Lock()
	watcher, cancel, done := w.watcher, w.cancel, w.done
	w.watcher, w.cancel, w.done = nil, nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		watcher.Close()
	}
	if done != nil {
		<-done
	}
}
