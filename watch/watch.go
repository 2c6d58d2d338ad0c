// Package watch re-annotates source files as they are saved.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
	"github.com/teranos/jsdoc-builder/source"
)

// DefaultDebounce is how long a path must stay quiet before it is annotated.
const DefaultDebounce = 300 * time.Millisecond

// ResultFunc receives the outcome of every annotation the watcher runs.
type ResultFunc func(path string, res annotate.Result, err error)

// Watcher watches directory trees and annotates recognised files on write
// or create.
type Watcher struct {
	watcher    *fsnotify.Watcher
	opts       annotate.Options
	extensions []string
	debounce   time.Duration
	onResult   ResultFunc
	logger     *zap.SugaredLogger

	mu        sync.Mutex
	timers    map[string]*time.Timer
	ownWrites map[string]bool
	pending   sync.WaitGroup
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnResult registers a callback invoked after each annotation.
func OnResult(fn ResultFunc) Option {
	return func(w *Watcher) { w.onResult = fn }
}

// New resolves the configuration and registers every directory under roots,
// skipping node_modules and dot directories.
func New(roots []string, opts annotate.Options, options ...Option) (*Watcher, error) {
	opts, err := annotate.Prepare(opts)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		watcher:    fw,
		opts:       opts,
		extensions: opts.Config.Hook.Extensions,
		debounce:   DefaultDebounce,
		logger:     logger.ComponentLogger("watch"),
		timers:     make(map[string]*time.Timer),
		ownWrites:  make(map[string]bool),
	}
	if len(w.extensions) == 0 {
		w.extensions = config.DefaultExtensions
	}
	for _, o := range options {
		o(w)
	}

	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.WithHint(
			errors.Mark(errors.Wrapf(err, "watch %s", root), errors.ErrSourceRead),
			"check that the directory exists")
	}
	if !info.IsDir() {
		return errors.WithHint(
			errors.Mark(errors.Newf("watch %s: not a directory", root), errors.ErrSourceRead),
			"pass directories to watch; use run for single files")
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Wrapf(err, "failed to watch %s", p)
		}
		w.logger.Debugw("Watching directory", logger.FieldFile, p)
		return nil
	})
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

// Run processes file events until ctx is cancelled, then waits for
// in-flight annotations and releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(filepath.Base(event.Name)) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warnw("Failed to watch new directory", logger.FieldFile, event.Name, logger.FieldError, err)
				}
			}
			return
		}
	}

	if !source.Recognized(event.Name, w.extensions) {
		return
	}
	if w.checkOwnWrite(event.Name) {
		w.logger.Debugw("Ignoring own write", logger.FieldFile, event.Name)
		return
	}
	w.schedule(ctx, event.Name)
}

// schedule debounces rapid events on one path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.annotate(ctx, path)
	})
}

func (w *Watcher) annotate(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	// The write, if any, happens inside AnnotateFile, so the guard is armed
	// before it and disarmed when nothing was written.
	w.markOwnWrite(path, true)
	res, err := annotate.AnnotateFile(ctx, path, w.opts)
	if err != nil || !res.Changed {
		w.markOwnWrite(path, false)
	}

	switch {
	case err != nil:
		w.logger.Warnw("Annotation failed", logger.FieldFile, path, logger.FieldError, err)
	case res.Changed:
		w.logger.Infow("Annotated on save", logger.FieldFile, path, logger.FieldTargets, len(res.Targets))
	}
	if w.onResult != nil {
		w.onResult(path, res, err)
	}
}

func (w *Watcher) markOwnWrite(path string, on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if on {
		w.ownWrites[path] = true
	} else {
		delete(w.ownWrites, path)
	}
}

// checkOwnWrite reports and clears the own-write flag for path.
func (w *Watcher) checkOwnWrite(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ownWrites[path] {
		delete(w.ownWrites, path)
		return true
	}
	return false
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.pending.Wait()
	if err := w.watcher.Close(); err != nil {
		w.logger.Debugw("Watcher close failed", logger.FieldError, err)
	}
}
