package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher collects rapid changes and triggers a single callback after
// things settle.
type FileWatcher struct {
	debounceDelay time.Duration

	timer        *time.Timer
	timerMu      sync.Mutex
	pendingPaths map[string]struct{}
	stopped      bool

	onChange func([]string)
	logger   *zap.Logger

	fs   *fsnotify.Watcher
	done chan struct{}
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithLogger logs watch errors to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *FileWatcher) { w.logger = logger.Named("watcher") }
}

// NewWatcher creates a file watcher with the specified debounce delay.
// onChange is called with the changed paths after debouncing.
func NewWatcher(debounceDelay time.Duration, onChange func([]string), opts ...Option) *FileWatcher {
	w := &FileWatcher{
		debounceDelay: debounceDelay,
		pendingPaths:  make(map[string]struct{}),
		onChange:      onChange,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FileChanged notifies the watcher of a file change. Multiple rapid calls
// are debounced into a single onChange callback.
func (w *FileWatcher) FileChanged(path string) {
	if shouldIgnore(path) {
		return
	}

	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.stopped {
		return
	}

	w.pendingPaths[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.processPending)
}

// Watch starts reporting changes to paths until ctx ends or Stop is called.
// It may be called once.
func (w *FileWatcher) Watch(ctx context.Context, paths ...string) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	targets := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = struct{}{}
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.fs = fs
	w.done = make(chan struct{})
	go w.run(ctx, targets)
	return nil
}

func (w *FileWatcher) run(ctx context.Context, targets map[string]struct{}) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.fs.Close()
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if _, watched := targets[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.FileChanged(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// Stop shuts down the watcher. Pending changes are dropped.
func (w *FileWatcher) Stop() {
	w.timerMu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	if w.fs != nil {
		w.fs.Close()
		<-w.done
	}
}

// processPending is called after the debounce delay.
func (w *FileWatcher) processPending() {
	w.timerMu.Lock()
	if w.stopped {
		w.timerMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pendingPaths))
	for path := range w.pendingPaths {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	w.pendingPaths = make(map[string]struct{})
	w.timer = nil
	w.timerMu.Unlock()

	if len(paths) > 0 && w.onChange != nil {
		w.onChange(paths)
	}
}

// shouldIgnore filters editor swap and backup files.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") {
		return true
	}
	switch filepath.Ext(base) {
	case ".swp", ".swo", ".tmp":
		return true
	}
	return false
}
