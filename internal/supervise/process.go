package supervise

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/warden/pkg/log"
	"github.com/bft-labs/warden/pkg/rotating"
)

// Process states as reported by State.
const (
	StateUp          = "up"
	StateDown        = "down"
	StateStopping    = "stopping"
	StateStopped     = "stopped"
	StateUnmonitored = "unmonitored"
)

// ProcessConfig describes a supervised command.
type ProcessConfig struct {
	Name    string
	Command string
	Dir     string
	Env     []string

	StopSignal  syscall.Signal
	StopTimeout time.Duration

	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// FlapCount restarts within FlapWindow make the process flap.
	FlapCount  int
	FlapWindow time.Duration
}

// SetDefaults fills zero values.
func (c *ProcessConfig) SetDefaults() {
	if c.StopSignal == 0 {
		c.StopSignal = syscall.SIGTERM
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = 10 * time.Second
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 30 * time.Second
	}
	if c.FlapCount <= 0 {
		c.FlapCount = 5
	}
	if c.FlapWindow <= 0 {
		c.FlapWindow = time.Minute
	}
}

// Process supervises one command. It is safe for concurrent use.
type Process struct {
	cfg    ProcessConfig
	logger log.Logger

	mu             sync.Mutex
	state          string
	monitored      bool
	restartPending bool

	cmd       *exec.Cmd
	exited    chan struct{}
	waitErr   error
	startedAt time.Time

	stopDeadline time.Time
	nextStart    time.Time
	backoff      *Backoff
	restarts     *rotating.Buffer[time.Time]
}

// NewProcess creates an unmonitored process. Nothing runs until Start.
func NewProcess(cfg ProcessConfig, logger log.Logger) (*Process, error) {
	if cfg.Name == "" {
		return nil, errors.New("process name is required")
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("process %q: command is required", cfg.Name)
	}
	cfg.SetDefaults()
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Process{
		cfg:      cfg,
		logger:   logger.With(log.String("process", cfg.Name)),
		state:    StateUnmonitored,
		backoff:  NewBackoff(cfg.BackoffInitial, cfg.BackoffMax),
		restarts: rotating.New[time.Time](cfg.FlapCount),
	}, nil
}

// Name returns the process name.
func (p *Process) Name() string { return p.cfg.Name }

// State returns the current state.
func (p *Process) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PID returns the pid of the running command, or 0.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.runningLocked() {
		return 0
	}
	return p.cmd.Process.Pid
}

// Start monitors the process and spawns it if it is not running.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.monitored = true
	p.restartPending = false
	p.backoff.Reset()
	p.restarts.Clear()
	if p.runningLocked() {
		if p.state != StateStopping {
			p.state = StateUp
		}
		return nil
	}
	p.spawnLocked(time.Now())
	return nil
}

// Stop stops monitoring and signals the command to exit.
func (p *Process) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.monitored = false
	p.restartPending = false
	if !p.runningLocked() {
		p.state = StateStopped
		return nil
	}
	p.signalStopLocked(time.Now())
	return nil
}

// Restart stops the command if running and starts it again on the next tick.
func (p *Process) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.monitored = true
	p.backoff.Reset()
	if !p.runningLocked() {
		p.spawnLocked(time.Now())
		return nil
	}
	p.restartPending = true
	p.signalStopLocked(time.Now())
	return nil
}

// Unmonitor stops supervising without touching the running command.
func (p *Process) Unmonitor() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.monitored = false
	p.restartPending = false
	p.state = StateUnmonitored
	return nil
}

// Tick reaps exits, escalates slow stops and restarts monitored commands
// whose backoff delay has elapsed.
func (p *Process) Tick(now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runningLocked() {
		if p.state == StateStopping && now.After(p.stopDeadline) {
			p.logger.Warn("stop timeout, killing", log.Duration("timeout", p.cfg.StopTimeout))
			p.killLocked(unix.SIGKILL)
			p.stopDeadline = now.Add(p.cfg.StopTimeout)
		}
		if p.monitored && p.state != StateStopping && now.Sub(p.startedAt) > p.cfg.BackoffMax {
			p.backoff.Reset()
		}
		return nil
	}

	if p.cmd != nil {
		p.logger.Info("process exited", log.Any("status", exitStatus(p.waitErr)))
		p.cmd = nil
		switch {
		case p.restartPending:
		case p.monitored:
			p.state = StateDown
			p.nextStart = now.Add(p.backoff.Next())
		case p.state == StateStopping:
			p.state = StateStopped
		}
	}

	if p.restartPending {
		p.restartPending = false
		p.spawnLocked(now)
		return nil
	}
	if !p.monitored || now.Before(p.nextStart) {
		return nil
	}

	p.restarts.Push(now)
	if p.flappingLocked() {
		history := p.restarts.Values()
		p.logger.Warn("process is flapping, unmonitoring",
			log.Int("restarts", len(history)),
			log.Duration("within", now.Sub(history[0])),
			log.Any("restart_times", history),
		)
		p.monitored = false
		p.state = StateUnmonitored
		p.restarts.Clear()
		return nil
	}
	p.spawnLocked(now)
	return nil
}

func (p *Process) flappingLocked() bool {
	if !p.restarts.Full() {
		return false
	}
	first, _ := p.restarts.First()
	last, _ := p.restarts.Last()
	return last.Sub(first) <= p.cfg.FlapWindow
}

func (p *Process) runningLocked() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

func (p *Process) spawnLocked(now time.Time) {
	cmd := exec.Command("/bin/sh", "-c", p.cfg.Command)
	cmd.Dir = p.cfg.Dir
	cmd.Env = append(os.Environ(), p.cfg.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		p.logger.Error("spawn failed", log.Err(err))
		p.state = StateDown
		p.nextStart = now.Add(p.backoff.Next())
		return
	}

	exited := make(chan struct{})
	p.cmd = cmd
	p.exited = exited
	p.waitErr = nil
	p.startedAt = now
	p.state = StateUp
	p.logger.Info("process started", log.Int("pid", cmd.Process.Pid))

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.waitErr = err
		}
		p.mu.Unlock()
		close(exited)
	}()
}

func (p *Process) signalStopLocked(now time.Time) {
	p.state = StateStopping
	p.stopDeadline = now.Add(p.cfg.StopTimeout)
	p.killLocked(p.cfg.StopSignal)
}

// killLocked signals the whole process group started for the command.
func (p *Process) killLocked(sig syscall.Signal) {
	pid := p.cmd.Process.Pid
	if err := unix.Kill(-pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
		p.logger.Warn("signal failed", log.Int("pid", pid), log.String("signal", sig.String()), log.Err(err))
	}
}

func exitStatus(err error) string {
	if err == nil {
		return "exit 0"
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ProcessState.String()
	}
	return err.Error()
}
