// Package watch recompiles a gloop tree whenever its entries change.
// Events are debounced so editor save storms and bulk renames trigger a
// single recompile.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/isdood/gloop/internal/compile"
	"github.com/isdood/gloop/pkg/types"
)

// Watcher watches a compile root and recompiles on change. When an Index is
// set, changed programs (by content hash) are saved to it.
type Watcher struct {
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	compiler *compile.Compiler
	logger   *zap.Logger
	root     string

	index     types.Index               // optional; nil disables saving
	onProgram func(*types.Compilation) // invoked after each changed compile

	lastHash    string
	debounceDur time.Duration
	pending     bool
	lastEvent   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	EventsSeen    int
	Compiles      int
	CompileErrors int
	Saves         int
	LastEventPath string
	LastEventTime time.Time
}

// Options configures a Watcher.
type Options struct {
	Compiler  *compile.Compiler         // required
	Logger    *zap.Logger               // nil means zap.NewNop()
	Index     types.Index               // optional save target
	OnProgram func(*types.Compilation) // invoked after each changed compile
	Debounce  time.Duration             // default 500ms
}

// New creates a Watcher for the tree rooted at root.
func New(root string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:     fsw,
		compiler:    opts.Compiler,
		logger:      logger,
		root:        abs,
		index:       opts.Index,
		onProgram:   opts.OnProgram,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start registers the watch paths, runs an initial compile, and begins the
// event loop in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching", zap.String("root", w.root))

	w.recompile(ctx)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("close watcher", zap.Error(err))
	}
	w.logger.Info("watcher stopped")
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// run is the event loop: collect events, recompile once they settle.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	sweep := time.NewTicker(100 * time.Millisecond)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("context cancelled")
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
			w.logger.Error("watch error", zap.Error(err))

		case <-sweep.C:
			w.mu.Lock()
			due := w.pending && time.Since(w.lastEvent) >= w.debounceDur
			if due {
				w.pending = false
			}
			w.mu.Unlock()
			if due {
				w.recompile(ctx)
			}
		}
	}
}

// handleEvent records one filesystem event and keeps the watch list covering
// newly created directories.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if base == "" || base[0] == '.' {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // chmod etc.
	}

	w.logger.Debug("event", zap.String("op", event.Op.String()), zap.String("path", event.Name))

	w.mu.Lock()
	w.stats.EventsSeen++
	w.stats.LastEventPath = event.Name
	w.stats.LastEventTime = time.Now()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// recompile compiles the root and, when the program changed, saves and
// reports it.
func (w *Watcher) recompile(ctx context.Context) {
	comp, err := w.compiler.Compile(ctx, w.root)

	w.mu.Lock()
	w.stats.Compiles++
	if err != nil {
		w.stats.CompileErrors++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("compile failed", zap.String("root", w.root), zap.Error(err))
		return
	}

	w.mu.Lock()
	changed := comp.ContentHash != w.lastHash
	w.lastHash = comp.ContentHash
	w.mu.Unlock()
	if !changed {
		return
	}

	w.logger.Info("program changed",
		zap.String("root", w.root),
		zap.Int("commands", len(comp.Commands)),
		zap.String("hash", comp.ContentHash[:12]))

	if w.index != nil {
		res, err := w.index.SaveCompilation(comp)
		if err != nil {
			w.logger.Error("save compilation", zap.Error(err))
		} else if res.Saved {
			w.mu.Lock()
			w.stats.Saves++
			w.mu.Unlock()
		}
	}
	if w.onProgram != nil {
		w.onProgram(comp)
	}
}

// addRecursive watches dir and every non-hidden directory below it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != dir && base[0] == '.' {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
