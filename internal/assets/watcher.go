package assets

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/logger"
)

// Change reports an asset file that changed on disk and settled.
type Change struct {
	Path    string
	Removed bool
}

// Watcher watches the manager's asset directories, drops changed files
// from its cache and reports them on Changes.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	manager  *Manager
	pending  map[string]pendingEvent
	debounce time.Duration
	changes  chan Change
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool
	stopOnce sync.Once
}

type pendingEvent struct {
	at      time.Time
	removed bool
}

// watchedExts are the asset types a reload applies to.
var watchedExts = map[string]bool{
	".pal": true,
	".png": true,
	".bmp": true,
	".spr": true,
}

// NewWatcher creates a watcher over every directory of m. Rapid writes to
// one file are merged until it has been quiet for debounce.
func NewWatcher(m *Manager, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range m.Dirs() {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	return &Watcher{
		watcher:  fw,
		manager:  m,
		pending:  make(map[string]pendingEvent),
		debounce: debounce,
		changes:  make(chan Change, 16),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Changes delivers settled changes. It is closed when the watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins watching in a goroutine. A stopped watcher stays stopped.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	logger.Info("watching assets", zap.Strings("dirs", w.watcher.WatchList()))
	go w.run(ctx)
}

// Stop stops the watcher and waits for its goroutine to exit. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		wasRunning := w.running
		w.running = false
		w.stopped = true
		w.mu.Unlock()

		if wasRunning {
			close(w.stopCh)
			<-w.doneCh
		} else {
			close(w.changes)
		}
		if err := w.watcher.Close(); err != nil {
			logger.Warn("closing asset watcher", zap.Error(err))
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.changes)

	tick := w.debounce / 4
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("asset watcher error", zap.Error(err))

		case now := <-ticker.C:
			if !w.flush(ctx, w.settled(now)) {
				return
			}
		}
	}
}

// flush invalidates every settled path, then reports each change. It
// returns false when shutdown interrupts delivery; changes not yet sent are
// dropped, their cache entries already gone.
func (w *Watcher) flush(ctx context.Context, batch []Change) bool {
	for _, c := range batch {
		w.manager.Invalidate(c.Path)
		logger.Debug("asset changed", zap.String("path", c.Path), zap.Bool("removed", c.Removed))
	}
	for i, c := range batch {
		select {
		case w.changes <- c:
		case <-ctx.Done():
			logger.Debug("asset changes dropped on shutdown", zap.Int("count", len(batch)-i))
			return false
		case <-w.stopCh:
			logger.Debug("asset changes dropped on shutdown", zap.Int("count", len(batch)-i))
			return false
		}
	}
	return true
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !watchedExts[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	var removed bool
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		removed = true
	default:
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = pendingEvent{at: time.Now(), removed: removed}
	w.mu.Unlock()
}

// settled returns and forgets the events quiet for at least the debounce.
func (w *Watcher) settled(now time.Time) []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Change
	for path, ev := range w.pending {
		if now.Sub(ev.at) >= w.debounce {
			out = append(out, Change{Path: path, Removed: ev.removed})
			delete(w.pending, path)
		}
	}
	return out
}
