package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/pkg/log"
)

const stalePollInterval = 25 * time.Millisecond

// terminateStale signals the server recorded in the pid file, if it is
// still alive, and waits up to KillWait for it to exit.
func (a *Application) terminateStale(ctx context.Context) error {
	pid, err := a.pids.Read()
	if err != nil {
		a.logger.Warn("ignoring unreadable pid file", log.String("path", a.pids.Path()), log.Err(err))
		return nil
	}
	if pid == 0 || pid == os.Getpid() {
		return nil
	}

	alive, err := a.processAlive(pid)
	if err != nil {
		return fmt.Errorf("%w: pid %d: %w", domain.ErrStaleServer, pid, err)
	}
	if !alive {
		a.logger.Debug("previous server already gone", log.Int("pid", pid))
		return nil
	}

	a.logger.Warn("terminating previous server", log.Int("pid", pid))
	if err := a.kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		return fmt.Errorf("%w: pid %d: %w", domain.ErrStaleServer, pid, err)
	}
	return a.waitExit(ctx, pid)
}

func (a *Application) waitExit(ctx context.Context, pid int) error {
	deadline := time.NewTimer(a.opts.KillWait)
	defer deadline.Stop()
	poll := time.NewTicker(stalePollInterval)
	defer poll.Stop()

	for {
		if alive, err := a.processAlive(pid); err != nil || !alive {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			a.logger.Warn("previous server still alive after kill wait",
				log.Int("pid", pid),
				log.Duration("kill_wait", a.opts.KillWait),
			)
			return nil
		case <-poll.C:
		}
	}
}

// processAlive probes pid with signal 0. ESRCH means the process is gone;
// any other failure is returned.
func (a *Application) processAlive(pid int) (bool, error) {
	err := a.kill(pid, 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, err
	}
}
