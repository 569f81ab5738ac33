// Package lifecycle provides the server state machine.
//
// This package tracks the lifecycle of a supervising server, including
// state transitions (Stopped, Starting, Running, Stopping, Crashed),
// cancellation of the server context, and a bounded join of its workers.
//
// # Usage
//
//	manager := lifecycle.NewManager(logger, nil)
//
//	if !manager.CanStart() {
//	    return lifecycle.ErrAlreadyRunning
//	}
//	if err := manager.TransitionTo(lifecycle.StateStarting, "server start"); err != nil {
//	    return err
//	}
//
//	// ... spawn workers ...
//
//	manager.Cancel()
//	if err := manager.Join(group.Wait, 10*time.Second); err != nil {
//	    return err
//	}
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting
package lifecycle
