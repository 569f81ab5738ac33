package supervise

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/internal/ports"
	"github.com/bft-labs/warden/pkg/log"
)

// Group is an ordered collection of processes. It is safe for concurrent use.
type Group struct {
	name   string
	logger log.Logger

	mu        sync.RWMutex
	processes []ports.Process
	byName    map[string]ports.Process
}

var _ ports.Group = (*Group)(nil)

// NewGroup creates an empty group. It satisfies ports.GroupFactory.
func NewGroup(name string, logger log.Logger) ports.Group {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if name != "" {
		logger = logger.With(log.String("group", name))
	}
	return &Group{
		name:   name,
		logger: logger,
		byName: make(map[string]ports.Process),
	}
}

// Name returns the group name; empty for the default group.
func (g *Group) Name() string { return g.name }

// AddProcess appends p. Process names are unique within a group.
func (g *Group) AddProcess(p ports.Process) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.byName[p.Name()]; ok {
		return fmt.Errorf("%w: %q in group %q", domain.ErrDuplicateProcess, p.Name(), g.name)
	}
	g.processes = append(g.processes, p)
	g.byName[p.Name()] = p
	return nil
}

// Start starts the processes matching target.
func (g *Group) Start(target string) error {
	return g.each(target, "start", ports.Process.Start)
}

// Stop stops the processes matching target.
func (g *Group) Stop(target string) error {
	return g.each(target, "stop", ports.Process.Stop)
}

// Restart restarts the processes matching target.
func (g *Group) Restart(target string) error {
	return g.each(target, "restart", ports.Process.Restart)
}

// Unmonitor unmonitors the processes matching target.
func (g *Group) Unmonitor(target string) error {
	return g.each(target, "unmonitor", ports.Process.Unmonitor)
}

// Status returns one line per process in registration order.
func (g *Group) Status() []ports.StatusLine {
	members := g.members("")
	lines := make([]ports.StatusLine, 0, len(members))
	for _, p := range members {
		lines = append(lines, ports.StatusLine{Label: p.Name(), Value: p.State()})
	}
	return lines
}

// Tick advances every process.
func (g *Group) Tick(now time.Time) error {
	var errs []error
	for _, p := range g.members("") {
		if err := p.Tick(now); err != nil {
			errs = append(errs, fmt.Errorf("process %q: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (g *Group) each(target, verb string, fn func(ports.Process) error) error {
	members := g.members(target)
	if len(members) == 0 {
		return nil
	}
	g.logger.Info("group command", log.String("verb", verb), log.String("target", target), log.Int("processes", len(members)))

	var errs []error
	for _, p := range members {
		if err := fn(p); err != nil {
			errs = append(errs, fmt.Errorf("%s process %q: %w", verb, p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// members returns all processes for an empty target, otherwise the one named target.
func (g *Group) members(target string) []ports.Process {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if target == "" {
		return append([]ports.Process(nil), g.processes...)
	}
	if p, ok := g.byName[target]; ok {
		return []ports.Process{p}
	}
	return nil
}
