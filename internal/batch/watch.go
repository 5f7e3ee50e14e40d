package batch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/tiledconv/internal/logger"
)

// Watcher reports files with matching extensions that were written or created
// under a set of directory trees. Events arrive in batches once the tree has
// been quiet for the debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	exts     []string
	Events   chan []string
	Errors   chan error
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches dirs and every directory below them.
func NewWatcher(debounce time.Duration, exts []string, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		exts:     exts,
		Events:   make(chan []string, 4),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, dir := range dirs {
		if _, err := w.addTree(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	go w.run()
	return w, nil
}

// Close stops the watcher. Events and Errors are closed once it has stopped.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

// addTree watches root and its subdirectories, returning the matching files
// already present.
func (w *Watcher) addTree(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		if hasExt(path, w.exts) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// New directories are not covered by the parent's watch.
			if event.Op&fsnotify.Create != 0 {
				if files, err := w.addTree(event.Name); err == nil {
					for _, f := range files {
						pending[f] = struct{}{}
					}
				}
			}
			if hasExt(event.Name, w.exts) {
				pending[event.Name] = struct{}{}
			}
			if len(pending) > 0 {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			clear(pending)

			select {
			case w.Events <- batch:
			case <-w.closeCh:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}

		case <-w.closeCh:
			return
		}
	}
}

// Watch runs convert on every batch of changed files under dirs until ctx is
// cancelled.
func Watch(ctx context.Context, debounce time.Duration, exts []string, dirs []string, convert func([]string) *Report) error {
	w, err := NewWatcher(debounce, exts, dirs...)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("watching for changes", zap.Strings("dirs", dirs), zap.Duration("debounce", debounce))
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Debug("change detected", zap.Strings("paths", paths))
			convert(paths).Log()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
