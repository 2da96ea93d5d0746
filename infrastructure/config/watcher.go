package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Limits holds designer limits that can change at runtime without a
// restart. A zero value means unlimited.
type Limits struct {
	MaxNodesPerGraph int `json:"maxNodesPerGraph"`
}

// LimitsWatcher watches a JSON limits file and hot-reloads it on change.
type LimitsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  Limits
	mu       sync.RWMutex
	onChange []func(Limits)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLimitsWatcher loads the limits file and starts watching it. The
// file's directory is watched too so atomic saves (write-then-rename)
// are picked up.
func NewLimitsWatcher(path string, logger *zap.Logger) (*LimitsWatcher, error) {
	limits, err := loadLimitsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load limits file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch limits directory: %w", err)
	}

	lw := &LimitsWatcher{
		path:    path,
		watcher: watcher,
		current: limits,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go lw.watchLoop()
	return lw, nil
}

// Current returns the limits currently in effect.
func (lw *LimitsWatcher) Current() Limits {
	lw.mu.RLock()
	defer lw.mu.RUnlock()
	return lw.current
}

// OnChange registers a callback invoked after every successful reload.
func (lw *LimitsWatcher) OnChange(fn func(Limits)) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.onChange = append(lw.onChange, fn)
}

// Stop terminates the watch loop and releases the watcher.
func (lw *LimitsWatcher) Stop() {
	lw.stopOnce.Do(func() {
		close(lw.stopCh)
		lw.watcher.Close()
	})
}

func (lw *LimitsWatcher) watchLoop() {
	for {
		select {
		case <-lw.stopCh:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(lw.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			lw.reload()
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			lw.logger.Warn("Limits watcher error", zap.Error(err))
		}
	}
}

func (lw *LimitsWatcher) reload() {
	limits, err := loadLimitsFile(lw.path)
	if err != nil {
		// Keep the previous limits if the file is mid-write or invalid.
		lw.logger.Warn("Failed to reload limits file",
			zap.String("path", lw.path),
			zap.Error(err),
		)
		return
	}

	lw.mu.Lock()
	lw.current = limits
	callbacks := append([]func(Limits){}, lw.onChange...)
	lw.mu.Unlock()

	lw.logger.Info("Reloaded designer limits",
		zap.Int("maxNodesPerGraph", limits.MaxNodesPerGraph),
	)
	for _, fn := range callbacks {
		fn(limits)
	}
}

func loadLimitsFile(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, err
	}
	var limits Limits
	if err := json.Unmarshal(data, &limits); err != nil {
		return Limits{}, err
	}
	return limits, nil
}
