package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/warden/internal/domain"
)

// tickLoop advances every group once per TickInterval until ctx is done.
func (a *Application) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := a.tick(now); err != nil {
				a.fail(err)
				return nil
			}
		}
	}
}

// tick calls Tick on each group in insertion order. A slow group delays
// the ones after it.
func (a *Application) tick(now time.Time) error {
	for _, g := range a.snapshot() {
		if err := g.Tick(now); err != nil {
			return fmt.Errorf("%w: group %q: %w", domain.ErrTick, g.Name(), err)
		}
	}
	return nil
}
