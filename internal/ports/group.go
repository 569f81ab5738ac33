package ports

import (
	"time"

	"github.com/bft-labs/warden/pkg/log"
)

// StatusLine is one labelled entry of a group status report.
type StatusLine struct {
	Label string
	Value string
}

// Process is a single supervised process.
// Implementations must tolerate concurrent calls from the tick loop and the worker.
type Process interface {
	Name() string
	State() string

	Start() error
	Stop() error
	Restart() error
	Unmonitor() error

	// Tick advances time-dependent state such as health checks and restart backoff.
	Tick(now time.Time) error
}

// Group is a named collection of processes sharing lifecycle commands.
//
// The lifecycle methods act on every member when target is empty and on
// the members matching target otherwise. A group with no matching member
// does nothing and returns nil.
type Group interface {
	Name() string

	Start(target string) error
	Stop(target string) error
	Restart(target string) error
	Unmonitor(target string) error

	// Status returns one line per process in registration order.
	Status() []StatusLine

	Tick(now time.Time) error

	AddProcess(p Process) error
}

// GroupFactory creates a group. An empty name is the default group.
type GroupFactory func(name string, logger log.Logger) Group
