package lifecycle

import "time"

// State represents the lifecycle state of a server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Controller manages the lifecycle state machine of a server.
type Controller interface {
	// State returns the current lifecycle state.
	State() State

	// CanStart returns true if the server may be started.
	CanStart() bool

	// TransitionTo attempts to transition to a new state.
	// Returns an error if the transition is not valid.
	TransitionTo(newState State, reason string) error

	// Cancel triggers cooperative shutdown.
	Cancel()

	// Join waits for wait to return, giving up after timeout.
	Join(wait func() error, timeout time.Duration) error
}
