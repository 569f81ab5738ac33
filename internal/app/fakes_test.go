package app

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/warden/internal/ports"
	"github.com/bft-labs/warden/pkg/log"
)

type fakeProcess struct {
	name  string
	state string
}

func (p *fakeProcess) Name() string         { return p.name }
func (p *fakeProcess) State() string        { return p.state }
func (p *fakeProcess) Start() error         { return nil }
func (p *fakeProcess) Stop() error          { return nil }
func (p *fakeProcess) Restart() error       { return nil }
func (p *fakeProcess) Unmonitor() error     { return nil }
func (p *fakeProcess) Tick(time.Time) error { return nil }

// fakeGroup records every call as "verb:target".
type fakeGroup struct {
	name string

	mu      sync.Mutex
	procs   []ports.Process
	calls   []string
	ticks   int
	stopErr error
	tickErr error
	gate    chan struct{}
}

func (g *fakeGroup) record(verb, target string) {
	g.mu.Lock()
	g.calls = append(g.calls, verb+":"+target)
	g.mu.Unlock()
}

func (g *fakeGroup) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGroup) Ticks() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ticks
}

func (g *fakeGroup) Name() string { return g.name }

func (g *fakeGroup) Start(target string) error {
	g.record("start", target)
	return nil
}

func (g *fakeGroup) Stop(target string) error {
	g.record("stop", target)
	if g.gate != nil {
		<-g.gate
	}
	return g.stopErr
}

func (g *fakeGroup) Restart(target string) error {
	g.record("restart", target)
	return nil
}

func (g *fakeGroup) Unmonitor(target string) error {
	g.record("unmonitor", target)
	return nil
}

func (g *fakeGroup) Status() []ports.StatusLine {
	g.mu.Lock()
	defer g.mu.Unlock()
	lines := make([]ports.StatusLine, 0, len(g.procs))
	for _, p := range g.procs {
		lines = append(lines, ports.StatusLine{Label: p.Name(), Value: p.State()})
	}
	return lines
}

func (g *fakeGroup) Tick(time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ticks++
	return g.tickErr
}

func (g *fakeGroup) AddProcess(p ports.Process) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.procs = append(g.procs, p)
	return nil
}

// registry is a GroupFactory that keeps the groups it created.
type registry struct {
	mu     sync.Mutex
	groups map[string]*fakeGroup
	setup  func(*fakeGroup)
}

func newRegistry() *registry {
	return &registry{groups: make(map[string]*fakeGroup)}
}

func (r *registry) factory(name string, _ log.Logger) ports.Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &fakeGroup{name: name}
	if r.setup != nil {
		r.setup(g)
	}
	r.groups[name] = g
	return g
}

func (r *registry) get(name string) *fakeGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groups[name]
}

// shortDir keeps unix socket paths under the platform length limit.
func shortDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
