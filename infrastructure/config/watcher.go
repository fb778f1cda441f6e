package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 200 * time.Millisecond

// Watcher reloads the configuration file when it changes and applies the new
// log level to the running logger. Other settings take effect on restart;
// callbacks registered with OnChange receive every accepted reload.
type Watcher struct {
	loader    *Loader
	level     zap.AtomicLevel
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewWatcher starts watching the loader's file. It returns an error when the
// loader has no file to watch.
func NewWatcher(loader *Loader, initial *Config, level zap.AtomicLevel, logger *zap.Logger) (*Watcher, error) {
	if loader.Path() == "" {
		return nil, fmt.Errorf("no configuration file to watch")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors often replace the file, so the directory is watched.
	if err := fsWatcher.Add(filepath.Dir(loader.Path())); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.Path(), err)
	}

	w := &Watcher{
		loader:  loader,
		level:   level,
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
		config:  initial,
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("file", loader.Path()))
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	target := filepath.Clean(w.loader.Path())
	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() { _ = w.Reload() })

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

// Reload reads the configuration again. An invalid file is logged and the
// current configuration is kept.
func (w *Watcher) Reload() error {
	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return err
	}

	w.mu.Lock()
	old := w.config
	w.config = cfg
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	if old == nil || old.LogLevel != cfg.LogLevel {
		w.level.SetLevel(cfg.ZapLevel())
		w.logger.Info("Log level changed", zap.String("level", cfg.LogLevel))
	}
	for _, cb := range callbacks {
		cb(cfg)
	}
	w.logger.Info("Configuration reloaded", zap.Strings("sources", w.loader.Sources()))
	return nil
}

// OnChange registers a callback invoked after each accepted reload.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}
