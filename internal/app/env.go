package app

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bft-labs/warden/pkg/log"
)

// ShutdownSignals are the signals that trigger a graceful server shutdown.
var ShutdownSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}

// Env is the process-wide context shared by every component: the root
// logger and the shutdown signal subscription. Create it once at startup
// and Close it on exit.
type Env struct {
	logger  log.Logger
	signals chan os.Signal
	once    sync.Once
}

// NewEnv creates an Env. When signals are given they are captured until
// Close instead of terminating the process.
func NewEnv(logger log.Logger, signals ...os.Signal) *Env {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	e := &Env{logger: logger}
	if len(signals) > 0 {
		e.signals = make(chan os.Signal, 1)
		signal.Notify(e.signals, signals...)
	}
	return e
}

// Logger returns the root logger.
func (e *Env) Logger() log.Logger { return e.logger }

// Signals delivers captured shutdown signals. It is nil, and so blocks
// forever, when the Env watches no signals.
func (e *Env) Signals() <-chan os.Signal { return e.signals }

// Close stops signal delivery. It is safe to call more than once.
func (e *Env) Close() {
	e.once.Do(func() {
		if e.signals != nil {
			signal.Stop(e.signals)
		}
	})
}
