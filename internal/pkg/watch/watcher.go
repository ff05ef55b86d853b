// Package watch calls a reload function whenever files under a path change.
package watch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Watcher interface {
	Watch(ctx context.Context) error
}

// Option configures a watcher created by New.
type Option func(*fsnotifyWatcher)

// WithFilter skips events for files keep returns false for.
func WithFilter(keep func(name string) bool) Option {
	return func(w *fsnotifyWatcher) { w.keep = keep }
}

// fsnotifyWatcher is a concrete implementation of the Watcher interface using the fsnotify library.
type fsnotifyWatcher struct {
	watcher    *fsnotify.Watcher
	path       string
	reloadFunc func() error
	keep       func(name string) bool
	logger     *zap.Logger
}

type noOpWatcher struct{}

func (w *noOpWatcher) Watch(ctx context.Context) error { return nil }

// NoOp returns a watcher that never fires, for stores that are not backed by files.
func NoOp() Watcher {
	return &noOpWatcher{}
}

// New creates a watcher on path (a file or a directory) that calls reloadFunc on data changes.
func New(path string, reloadFunc func() error, logger *zap.Logger, options ...Option) (Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	w := &fsnotifyWatcher{
		watcher:    fsWatcher,
		path:       path,
		reloadFunc: reloadFunc,
		keep:       func(string) bool { return true },
		logger:     logger,
	}
	for _, option := range options {
		option(w)
	}
	return w, nil
}

// Watch starts watching in the background until ctx is cancelled.
func (w *fsnotifyWatcher) Watch(ctx context.Context) error {
	if err := w.watcher.Add(w.path); err != nil {
		w.watcher.Close()
		return fmt.Errorf("failed to start watching %s: %w", w.path, err)
	}

	go func() {
		defer w.watcher.Close()

		for {
			select {
			case <-ctx.Done():
				w.logger.Info("stopping file watcher", zap.String("path", w.path))
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				// only ops that change data
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					if !w.keep(event.Name) {
						w.logger.Debug("file change skipped", zap.String("file", event.Name))
						continue
					}

					w.logger.Info("file change detected, reloading", zap.String("file", event.Name))

					if err := w.reloadFunc(); err != nil {
						w.logger.Error("hot reload failed", zap.Error(err))
					}
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("file watcher error", zap.Error(err))
			}
		}
	}()

	w.logger.Info("watching for changes", zap.String("path", w.path))
	return nil
}
