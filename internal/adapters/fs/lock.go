package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another server holds the instance lock.
var ErrLocked = errors.New("instance lock held by another server")

// InstanceLock is an advisory lock guaranteeing a single server per
// application name and base directory.
type InstanceLock struct {
	lock *flock.Flock
}

// NewInstanceLock creates the lock for {baseDir}/pids/{name}.lock.
func NewInstanceLock(baseDir, name string) *InstanceLock {
	return &InstanceLock{lock: flock.New(filepath.Join(baseDir, "pids", name+".lock"))}
}

// Acquire takes the lock, retrying every retryDelay until ctx is done.
func (l *InstanceLock) Acquire(ctx context.Context, retryDelay time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLockContext(ctx, retryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("acquire lock %q: %w", l.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, l.lock.Path())
	}
	return nil
}

// Release drops the lock.
func (l *InstanceLock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *InstanceLock) Path() string {
	return l.lock.Path()
}
