// Package warden supervises groups of processes from a single named daemon
// and lets short-lived clients control it over a local socket.
//
// Example usage:
//
//	env := warden.NewEnv(logger, warden.ShutdownSignals...)
//	defer env.Close()
//
//	a, err := warden.New("web", warden.Options{BaseDir: "/var/warden", Env: env})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := warden.NewProcess(warden.ProcessConfig{Name: "api", Command: "./api"}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := a.AddProcess(p, "web"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := a.StartServer(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// A second Application with the same name and base directory that never
// calls StartServer acts as a client:
//
//	out, err := client.Status(ctx, "")
package warden

import (
	"os"

	"github.com/bft-labs/warden/internal/app"
	"github.com/bft-labs/warden/internal/domain"
	"github.com/bft-labs/warden/internal/ports"
	"github.com/bft-labs/warden/internal/supervise"
	"github.com/bft-labs/warden/pkg/lifecycle"
	"github.com/bft-labs/warden/pkg/log"
)

// Application is one named warden instance, in client or server mode.
type Application = app.Application

// Options configures an Application. Zero values select defaults.
type Options = app.Options

// Env carries the root logger and the shutdown signal subscription.
type Env = app.Env

// Mode is the role an Application currently plays.
type Mode = app.Mode

// Modes.
const (
	ModeClient = app.ModeClient
	ModeServer = app.ModeServer
)

// State is the server lifecycle state reported by Application.State and
// passed to Options.OnStateChange.
type State = lifecycle.State

// Lifecycle states.
const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// Verb is a control command understood by the server.
type Verb = domain.Verb

// Supported verbs.
const (
	VerbStatus    = domain.VerbStatus
	VerbStart     = domain.VerbStart
	VerbStop      = domain.VerbStop
	VerbRestart   = domain.VerbRestart
	VerbUnmonitor = domain.VerbUnmonitor
)

// Process and Group are the collaborator interfaces an Application drives.
type (
	Process      = ports.Process
	Group        = ports.Group
	StatusLine   = ports.StatusLine
	GroupFactory = ports.GroupFactory
)

// ProcessConfig describes a shell command supervised by NewProcess.
type ProcessConfig = supervise.ProcessConfig

// ShutdownSignals are the signals that stop a server gracefully.
var ShutdownSignals = app.ShutdownSignals

// Errors returned by the public API. Check them with errors.Is.
var (
	ErrStaleServer        = domain.ErrStaleServer
	ErrChannelUnavailable = domain.ErrChannelUnavailable
	ErrUnknownCommand     = domain.ErrUnknownCommand
	ErrDispatch           = domain.ErrDispatch
	ErrTick               = domain.ErrTick
	ErrAlreadyRunning     = domain.ErrAlreadyRunning
	ErrNotRunning         = domain.ErrNotRunning
	ErrShutdownTimeout    = domain.ErrShutdownTimeout
	ErrInvalidConfig      = domain.ErrInvalidConfig
	ErrDuplicateProcess   = domain.ErrDuplicateProcess
)

// New creates a client-mode Application. Call StartServer to become the server.
func New(name string, opts Options) (*Application, error) {
	return app.New(name, opts)
}

// NewEnv creates the shared logging and signal context. Close it on exit.
func NewEnv(logger log.Logger, signals ...os.Signal) *Env {
	return app.NewEnv(logger, signals...)
}

// NewProcess creates a Process that runs cfg.Command through /bin/sh.
func NewProcess(cfg ProcessConfig, logger log.Logger) (Process, error) {
	p, err := supervise.NewProcess(cfg, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewGroup is the default GroupFactory.
func NewGroup(name string, logger log.Logger) Group {
	return supervise.NewGroup(name, logger)
}
