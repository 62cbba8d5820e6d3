package file

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/scheme-research/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading.
const DefaultDebounce = 250 * time.Millisecond

// Reloader is anything whose cached state can be dropped on change.
type Reloader interface {
	Reload()
}

// Watcher reloads a Reloader whenever a .txt file in a directory changes.
// The directory is watched rather than the files so editors that replace
// files on save are handled.
type Watcher struct {
	dir      string
	target   Reloader
	watcher  *fsnotify.Watcher
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	reloads int
}

// NewWatcher starts watching dir and calls target.Reload on changes.
// The directory must exist.
func NewWatcher(dir string, target Reloader, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:      dir,
		target:   target,
		watcher:  fw,
		debounce: debounce,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	logger.Debug("watching prompts in %s", dir)
	return w, nil
}

// WatchPrompts ensures the prompt directory exists and watches it.
func WatchPrompts(store *PromptStore, debounce time.Duration) (*Watcher, error) {
	// Load triggers lazy creation of the directory and default files.
	if _, err := store.Load(Names()[0]); err != nil {
		return nil, err
	}
	return NewWatcher(store.Dir(), store, debounce)
}

// Reloads returns how many reloads have fired.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".txt") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// schedule debounces bursts of events into one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}

	w.target.Reload()
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	logger.Info("prompts reloaded from %s", w.dir)
}
