package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vawter.tech/stopper"

	"github.com/bft-labs/warden/internal/adapters/fs"
	"github.com/bft-labs/warden/internal/channel"
	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/internal/workqueue"
	"github.com/bft-labs/warden/pkg/lifecycle"
	"github.com/bft-labs/warden/pkg/log"
)

const lockRetryDelay = 50 * time.Millisecond

// StartServer turns the Application into the server for its name and base
// directory. It terminates a stale server, binds the command channel,
// records its pid, starts every registered group and then runs the
// listener, worker and tick loop until ctx is cancelled, a shutdown signal
// arrives or a worker or tick error occurs. Shutdown is cooperative: the
// worker executes every item queued before the listener closed.
//
// It returns nil after a clean shutdown and the fatal error otherwise.
func (a *Application) StartServer(ctx context.Context) error {
	if !a.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := a.lifecycle.TransitionTo(lifecycle.StateStarting, "start requested"); err != nil {
		return domain.ErrAlreadyRunning
	}

	srv, lock, err := a.bootstrap(ctx)
	if err != nil {
		_ = a.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
		return err
	}
	return a.run(ctx, srv, lock)
}

func (a *Application) bootstrap(ctx context.Context) (*channel.Server, *fs.InstanceLock, error) {
	for _, dir := range []string{"pids", "socks"} {
		if err := os.MkdirAll(filepath.Join(a.baseDir, dir), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create %s dir: %w", dir, err)
		}
	}

	if err := a.terminateStale(ctx); err != nil {
		return nil, nil, err
	}

	lock := fs.NewInstanceLock(a.baseDir, a.name)
	lockCtx, cancel := context.WithTimeout(ctx, a.opts.KillWait)
	defer cancel()
	if err := lock.Acquire(lockCtx, lockRetryDelay); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrAlreadyRunning, err)
	}

	a.mu.Lock()
	a.mode = ModeServer
	a.queue = workqueue.New()
	a.mu.Unlock()

	srv, err := channel.Listen(channel.SocketPath(a.baseDir, a.name), a.logger)
	if err != nil {
		a.abortStart(nil, lock)
		return nil, nil, err
	}
	if err := a.pids.Write(os.Getpid()); err != nil {
		a.abortStart(srv, lock)
		return nil, nil, fmt.Errorf("write pid file: %w", err)
	}

	if a.opts.SetTitle {
		if err := setProcessTitle("wardend: " + a.name); err != nil {
			a.logger.Debug("set process title failed", log.Err(err))
		}
	}

	for _, g := range a.snapshot() {
		if err := g.Start(""); err != nil {
			a.abortStart(srv, lock)
			_ = a.pids.Remove(os.Getpid())
			return nil, nil, fmt.Errorf("%w: start group %q: %w", domain.ErrDispatch, g.Name(), err)
		}
	}
	return srv, lock, nil
}

func (a *Application) abortStart(srv *channel.Server, lock *fs.InstanceLock) {
	if srv != nil {
		_ = srv.Close()
	}
	_ = lock.Release()
	a.toClient()
}

func (a *Application) toClient() {
	a.mu.Lock()
	a.mode = ModeClient
	a.queue = nil
	a.mu.Unlock()
}

func (a *Application) run(parent context.Context, srv *channel.Server, lock *fs.InstanceLock) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	a.lifecycle.SetCancel(cancel)
	a.resetFatal()

	a.mu.RLock()
	queue := a.queue
	a.mu.RUnlock()

	own := os.Getpid()
	listenerDone := make(chan struct{})

	sctx := stopper.WithContext(ctx)
	sctx.Go(func(*stopper.Context) error {
		defer close(listenerDone)
		return srv.Serve(ctx, a.handleLine)
	})
	sctx.Go(func(*stopper.Context) error {
		return a.work(ctx, queue)
	})
	sctx.Go(func(*stopper.Context) error {
		return a.tickLoop(ctx)
	})
	sctx.Go(func(*stopper.Context) error {
		a.watchPID(ctx, own)
		return nil
	})
	sctx.Go(func(*stopper.Context) error {
		a.watchSignals(ctx)
		return nil
	})

	if err := a.lifecycle.TransitionTo(lifecycle.StateRunning, "server started"); err != nil {
		a.logger.Warn("unexpected lifecycle state", log.Err(err))
	}
	a.logger.Info("server started",
		log.Int("pid", own),
		log.String("base_dir", a.baseDir),
		log.Int("groups", len(a.snapshot())),
	)

	<-ctx.Done()
	_ = a.lifecycle.TransitionTo(lifecycle.StateStopping, "shutdown requested")
	a.logger.Info("shutting down")

	// Close the listener before the queue so that every acknowledged
	// command reaches the worker.
	if err := srv.Close(); err != nil {
		a.logger.Warn("close command channel failed", log.Err(err))
	}
	select {
	case <-listenerDone:
	case <-time.After(a.opts.ShutdownTimeout):
		a.logger.Warn("listener did not stop in time")
	}
	queue.Close()

	sctx.Stop(a.opts.ShutdownTimeout)
	joinErr := a.lifecycle.Join(sctx.Wait, a.opts.ShutdownTimeout)

	a.toClient()
	if err := a.pids.Remove(own); err != nil {
		a.logger.Warn("remove pid file failed", log.Err(err))
	}
	if err := lock.Release(); err != nil {
		a.logger.Warn("release lock failed", log.Err(err))
	}

	if fatal := a.fatalErr(); fatal != nil {
		_ = a.lifecycle.TransitionTo(lifecycle.StateCrashed, fatal.Error())
		return fatal
	}
	if joinErr != nil {
		_ = a.lifecycle.TransitionTo(lifecycle.StateCrashed, joinErr.Error())
		if errors.Is(joinErr, lifecycle.ErrShutdownTimeout) {
			return domain.ErrShutdownTimeout
		}
		return joinErr
	}

	_ = a.lifecycle.TransitionTo(lifecycle.StateStopped, "shutdown complete")
	a.logger.Info("server stopped")
	return nil
}

func (a *Application) watchSignals(ctx context.Context) {
	select {
	case <-ctx.Done():
	case sig := <-a.env.Signals():
		a.logger.Info("received signal", log.String("signal", sig.String()))
		a.lifecycle.Cancel()
	}
}

// watchPID stops the server if another server takes over the pid file.
func (a *Application) watchPID(ctx context.Context, own int) {
	w := fs.NewPIDWatcher(a.pidFile, own, a.logger)
	err := w.Run(ctx, func(pid int) {
		a.logger.Warn("pid file taken over by another server", log.Int("pid", pid))
		a.lifecycle.Cancel()
	})
	if err != nil {
		a.logger.Warn("pid watcher stopped", log.Err(err))
	}
}
