package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/scanner"
)

// DefaultDelay is how long a file has to stay unchanged before the handler
// runs for it.
const DefaultDelay = 100 * time.Millisecond

var ErrWatching = errors.New("already watching")

// Handler is called with the path of a changed markup file. Calls for
// different files may run concurrently.
type Handler func(path string)

// Watcher re-runs a handler for markup files written below a set of
// directories. Several writes to the same file in quick succession result in
// a single call.
type Watcher struct {
	// Delay is the debounce interval. It must be set before Start.
	Delay time.Duration

	logger  *zap.Logger
	dirs    []string
	files   *scanner.Scanner
	handler Handler
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	watching bool
	pending  map[string]*time.Timer
	done     chan struct{}
}

// New creates a watcher for dirs and their subdirectories. Files are
// selected by extension as the scanner does.
func New(logger *zap.Logger, dirs []string, handler Handler, extensions ...string) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	return &Watcher{
		Delay:   DefaultDelay,
		logger:  logger,
		dirs:    dirs,
		files:   scanner.New("", extensions...),
		handler: handler,
		watcher: fw,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start registers the directories and begins delivering events in the
// background.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching {
		return ErrWatching
	}

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.watching = true
	w.done = make(chan struct{})
	go w.watchLoop()
	return nil
}

// Close stops watching and drops changes whose handler has not run yet.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	watching := w.watching
	w.watching = false
	w.mu.Unlock()

	err := w.watcher.Close()
	if watching {
		<-w.done
	}
	return err
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		w.watcher.Close()
		return err
	}
	w.logger.Info("watching for changes", zap.Strings("dirs", w.dirs))
	<-ctx.Done()
	if err := w.Close(); err != nil {
		return err
	}
	return ctx.Err()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			err = w.addTree(event.Name)
			w.mu.Unlock()
			if err != nil {
				w.logger.Error("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.files.Match(event.Name) {
		return
	}
	w.schedule(event.Name)
}

// schedule runs the handler for path once no further change arrived within
// the delay.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watching {
		return
	}

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.Delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.Delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		watching := w.watching
		w.mu.Unlock()
		if !watching {
			return
		}
		w.logger.Debug("file changed", zap.String("file", path))
		w.handler(path)
	})
}
