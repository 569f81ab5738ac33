package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/internal/ports"
	"github.com/bft-labs/warden/internal/workqueue"
	"github.com/bft-labs/warden/pkg/log"
)

// verbTable maps each mutating verb to the Group method that applies it.
var verbTable = map[domain.Verb]func(ports.Group, string) error{
	domain.VerbStart:     ports.Group.Start,
	domain.VerbStop:      ports.Group.Stop,
	domain.VerbRestart:   ports.Group.Restart,
	domain.VerbUnmonitor: ports.Group.Unmonitor,
}

// dispatch applies item. A target naming a group addresses every member of
// that group; any other target is broadcast to all groups, which match it
// against their own members.
func (a *Application) dispatch(item domain.WorkItem) error {
	apply, ok := verbTable[item.Verb]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, item.Verb)
	}

	if item.Target != "" {
		if g, ok := a.lookupGroup(item.Target); ok {
			return apply(g, "")
		}
	}

	for _, g := range a.snapshot() {
		if err := apply(g, item.Target); err != nil {
			return fmt.Errorf("group %q: %w", g.Name(), err)
		}
	}
	return nil
}

// work drains the queue until it is closed and empty. Items queued before
// shutdown are still executed. A dispatch error is fatal to the server.
func (a *Application) work(ctx context.Context, queue *workqueue.Queue) error {
	drainCtx := context.WithoutCancel(ctx)
	for {
		item, err := queue.Pop(drainCtx)
		if errors.Is(err, workqueue.ErrClosed) {
			a.logger.Debug("worker drained")
			return nil
		}
		if err != nil {
			return err
		}

		cmd := domain.Command{Verb: item.Verb, Target: item.Target}
		a.logger.Debug("dispatching", log.String("command", cmd.String()))
		if err := a.dispatch(item); err != nil {
			a.fail(fmt.Errorf("%w: %s: %w", domain.ErrDispatch, cmd, err))
			return nil
		}
	}
}
