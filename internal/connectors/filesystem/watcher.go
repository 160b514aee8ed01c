package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Default watcher throttling: sustained changes per second and burst.
const (
	DefaultEventRate  = 5
	DefaultEventBurst = 10
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports changes to supported files under a root directory.
type Watcher struct {
	root      string
	recursive bool
	limiter   *rate.Limiter

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithRecursive also watches subdirectories, including ones created later.
func WithRecursive(recursive bool) WatcherOption {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

// WithRateLimit throttles emitted changes to eventsPerSecond with burst.
func WithRateLimit(eventsPerSecond float64, burst int) WatcherOption {
	return func(w *Watcher) {
		w.limiter = rate.NewLimiter(rate.Limit(eventsPerSecond), burst)
	}
}

// NewWatcher creates a watcher for root. Call Watch to start it.
func NewWatcher(root string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:    ResolvePath(root),
		limiter: rate.NewLimiter(DefaultEventRate, DefaultEventBurst),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns a channel of changes. The channel
// is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, fmt.Errorf("%w: watcher already started", domain.ErrAlreadyExists)
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(fw, w.root); err != nil {
		fw.Close()
		return nil, err
	}
	w.watcher = fw

	changes := make(chan domain.FileChange)
	go w.run(ctx, fw, changes)

	logger.Info("Watching %s", w.root)
	return changes, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- domain.FileChange) {
	defer close(changes)
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.recursive && event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := w.addTree(fw, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			change := handleFsEvent(event)
			if change == nil {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// addTree watches dir and, when recursive, every non-hidden directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		return fw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent maps an fsnotify event to a change, or nil when the
// event is not about a supported, visible file.
func handleFsEvent(event fsnotify.Event) *domain.FileChange {
	name := filepath.Base(event.Name)
	if isHidden(name) || !Supported(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.FileChange{Type: changeType, Path: event.Name}
	default:
		return nil
	}
}
