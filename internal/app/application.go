// Package app implements the warden control plane: a named Application that
// either runs as the supervising server or forwards commands to it as a client.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/warden/internal/adapters/fs"
	"github.com/bft-labs/warden/internal/channel"
	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/internal/ports"
	"github.com/bft-labs/warden/internal/supervise"
	"github.com/bft-labs/warden/internal/workqueue"
	"github.com/bft-labs/warden/pkg/lifecycle"
	"github.com/bft-labs/warden/pkg/log"
)

// DefaultBaseDir holds the pids and socks directories unless overridden.
const DefaultBaseDir = "/var/warden"

// Mode is the role an Application currently plays.
type Mode int

const (
	ModeClient Mode = iota
	ModeServer
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	if m == ModeServer {
		return "server"
	}
	return "client"
}

// Options configures an Application. Zero values select defaults.
type Options struct {
	BaseDir string

	// Env carries the logger and shutdown signals. Defaults to a silent Env
	// that watches no signals.
	Env *Env

	TickInterval    time.Duration
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	KillWait        time.Duration
	ShutdownTimeout time.Duration

	// NewGroup creates groups on first registration. Defaults to supervise.NewGroup.
	NewGroup ports.GroupFactory

	// SetTitle renames the server process to "wardend: {name}".
	SetTitle bool

	// OnStateChange observes server lifecycle transitions. It runs on the
	// goroutine making the transition and must not block.
	OnStateChange func(previous, current lifecycle.State, reason string)
}

func (o *Options) setDefaults() {
	if o.BaseDir == "" {
		o.BaseDir = DefaultBaseDir
	}
	if o.Env == nil {
		o.Env = NewEnv(nil)
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = channel.DefaultDialTimeout
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = channel.DefaultResponseTimeout
	}
	if o.KillWait <= 0 {
		o.KillWait = time.Second
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = lifecycle.ShutdownTimeout
	}
	if o.NewGroup == nil {
		o.NewGroup = supervise.NewGroup
	}
}

// Application is one named warden instance. It starts in client mode and
// becomes the server through StartServer.
type Application struct {
	name    string
	baseDir string
	opts    Options
	env     *Env
	logger  log.Logger

	client    *channel.Client
	pidFile   *fs.PIDFile
	pids      ports.PIDStore
	lifecycle *lifecycle.Manager

	// kill delivers signals to other processes; unix.Kill outside tests.
	kill func(pid int, sig unix.Signal) error

	mu     sync.RWMutex
	mode   Mode
	queue  *workqueue.Queue
	groups []ports.Group
	byName map[string]ports.Group

	fatalMu sync.Mutex
	fatal   error

	reasonMu sync.Mutex
	reason   string
}

// stateEmitter adapts a function to lifecycle.EventEmitter.
type stateEmitter func(previous, current lifecycle.State, reason string)

func (f stateEmitter) OnStateChange(previous, current lifecycle.State, reason string) {
	f(previous, current, reason)
}

// New creates a client-mode Application. It binds nothing and starts no goroutines.
func New(name string, opts Options) (*Application, error) {
	if name == "" || strings.ContainsAny(name, "/:\n") {
		return nil, fmt.Errorf("%w: invalid application name %q", domain.ErrInvalidConfig, name)
	}
	opts.setDefaults()

	logger := opts.Env.Logger().With(log.String("app", name))
	pidFile := fs.NewPIDFile(opts.BaseDir, name)

	a := &Application{
		name:      name,
		baseDir:   opts.BaseDir,
		opts:      opts,
		env:       opts.Env,
		logger:    logger,
		client:    channel.NewClient(channel.SocketPath(opts.BaseDir, name), opts.DialTimeout, opts.ResponseTimeout),
		pidFile:   pidFile,
		pids:      pidFile,
		byName:    make(map[string]ports.Group),
		kill:      unix.Kill,
	}
	a.lifecycle = lifecycle.NewManager(logger, stateEmitter(a.onStateChange))
	return a, nil
}

// Name returns the application name.
func (a *Application) Name() string { return a.name }

// BaseDir returns the directory holding the pid file and socket.
func (a *Application) BaseDir() string { return a.baseDir }

// Mode returns the current mode.
func (a *Application) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// State returns the server lifecycle state.
func (a *Application) State() lifecycle.State {
	return a.lifecycle.State()
}

// StateReason returns the reason given for the most recent lifecycle
// transition, such as the fatal error that crashed the server.
func (a *Application) StateReason() string {
	a.reasonMu.Lock()
	defer a.reasonMu.Unlock()
	return a.reason
}

func (a *Application) onStateChange(previous, current lifecycle.State, reason string) {
	a.reasonMu.Lock()
	a.reason = reason
	a.reasonMu.Unlock()
	if a.opts.OnStateChange != nil {
		a.opts.OnStateChange(previous, current, reason)
	}
}

// AddProcess registers p with the named group, creating the group if needed.
// An empty group name selects the default group. Registration is expected
// before StartServer.
func (a *Application) AddProcess(p ports.Process, group string) error {
	return a.getOrCreateGroup(group).AddProcess(p)
}

// Status returns the status report. A server renders it locally; a client
// forwards "status[:target]" and returns the raw response.
func (a *Application) Status(ctx context.Context, target string) (string, error) {
	return a.Control(ctx, domain.VerbStatus, target)
}

// Start starts the processes addressed by target.
func (a *Application) Start(ctx context.Context, target string) (string, error) {
	return a.Control(ctx, domain.VerbStart, target)
}

// Stop stops the processes addressed by target.
func (a *Application) Stop(ctx context.Context, target string) (string, error) {
	return a.Control(ctx, domain.VerbStop, target)
}

// Restart restarts the processes addressed by target.
func (a *Application) Restart(ctx context.Context, target string) (string, error) {
	return a.Control(ctx, domain.VerbRestart, target)
}

// Unmonitor stops supervising the processes addressed by target.
func (a *Application) Unmonitor(ctx context.Context, target string) (string, error) {
	return a.Control(ctx, domain.VerbUnmonitor, target)
}

// Control runs verb against target. In client mode the command is sent over
// the command channel. In server mode status is rendered directly and
// mutating verbs are queued for the worker, returning "ok" immediately.
func (a *Application) Control(ctx context.Context, verb domain.Verb, target string) (string, error) {
	if _, err := domain.ParseVerb(string(verb)); err != nil {
		return "", err
	}
	cmd := domain.Command{Verb: verb, Target: target}
	if a.Mode() == ModeClient {
		return a.client.Send(ctx, cmd.String())
	}
	return a.execute(cmd)
}

func (a *Application) execute(cmd domain.Command) (string, error) {
	if !cmd.Verb.Mutating() {
		return renderStatus(a.snapshot(), cmd.Target), nil
	}
	if _, ok := verbTable[cmd.Verb]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Verb)
	}

	a.mu.RLock()
	queue := a.queue
	a.mu.RUnlock()
	if queue == nil {
		return "", domain.ErrNotRunning
	}
	if err := queue.Push(domain.WorkItem{Verb: cmd.Verb, Target: cmd.Target}); err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrNotRunning, cmd, err)
	}
	return "ok", nil
}

// handleLine answers one command channel request.
func (a *Application) handleLine(_ context.Context, line string) (string, error) {
	cmd, err := domain.ParseCommand(line)
	if err != nil {
		return "", err
	}
	resp, err := a.execute(cmd)
	if err != nil {
		return "", err
	}
	if resp != "" && !strings.HasSuffix(resp, "\n") {
		resp += "\n"
	}
	return resp, nil
}

// getOrCreateGroup is the only path that creates groups.
func (a *Application) getOrCreateGroup(name string) ports.Group {
	a.mu.Lock()
	defer a.mu.Unlock()

	if g, ok := a.byName[name]; ok {
		return g
	}
	g := a.opts.NewGroup(name, a.logger)
	a.byName[name] = g
	a.groups = append(a.groups, g)
	return g
}

func (a *Application) lookupGroup(name string) (ports.Group, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.byName[name]
	return g, ok
}

// snapshot returns the groups in insertion order.
func (a *Application) snapshot() []ports.Group {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]ports.Group, len(a.groups))
	copy(out, a.groups)
	return out
}

// fail records the first fatal error and triggers shutdown.
func (a *Application) fail(err error) {
	a.fatalMu.Lock()
	if a.fatal == nil {
		a.fatal = err
	}
	a.fatalMu.Unlock()

	a.logger.Error("fatal error, shutting down", log.Err(err))
	a.lifecycle.Cancel()
}

func (a *Application) fatalErr() error {
	a.fatalMu.Lock()
	defer a.fatalMu.Unlock()
	return a.fatal
}

func (a *Application) resetFatal() {
	a.fatalMu.Lock()
	a.fatal = nil
	a.fatalMu.Unlock()
}
