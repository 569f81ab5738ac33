package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/warden/pkg/log"
)

// PIDWatcher reports when the pid file stops naming this server, which
// happens when a newer server for the same application has taken over.
type PIDWatcher struct {
	file   *PIDFile
	own    int
	delay  time.Duration
	logger log.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewPIDWatcher creates a watcher for file that expects to find own in it.
func NewPIDWatcher(file *PIDFile, own int, logger log.Logger) *PIDWatcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &PIDWatcher{
		file:   file,
		own:    own,
		delay:  100 * time.Millisecond,
		logger: logger,
	}
}

// Run watches the pid directory until ctx is done. superseded is called
// at most once, with the pid now recorded, if another server takes over.
func (w *PIDWatcher) Run(ctx context.Context, superseded func(pid int)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.file.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var once sync.Once
	check := func() {
		pid, err := w.file.Read()
		if err != nil {
			w.logger.Warn("pid file unreadable", log.Err(err))
			return
		}
		if pid != 0 && pid != w.own {
			once.Do(func() { superseded(pid) })
		}
	}

	base := filepath.Base(w.file.Path())
	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounceCheck(check)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("pid watcher error", log.Err(err))
		}
	}
}

func (w *PIDWatcher) debounceCheck(check func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, check)
}

func (w *PIDWatcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}
