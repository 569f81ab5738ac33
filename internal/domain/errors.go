package domain

import "errors"

// Domain errors represent error conditions in the warden control plane.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrStaleServer is returned when a previous server could not be signalled.
	ErrStaleServer = errors.New("warden: cannot terminate previous server")

	// ErrChannelUnavailable is returned when the command channel cannot be reached or bound.
	ErrChannelUnavailable = errors.New("warden: command channel unavailable")

	// ErrUnknownCommand is returned for a request line whose verb is not supported.
	ErrUnknownCommand = errors.New("warden: unknown command")

	// ErrDispatch is returned when a queued command fails to execute.
	ErrDispatch = errors.New("warden: dispatch failed")

	// ErrTick is returned when a group fails to advance on tick.
	ErrTick = errors.New("warden: tick failed")

	// ErrAlreadyRunning is returned when a server is started twice.
	ErrAlreadyRunning = errors.New("warden: already running")

	// ErrNotRunning is returned when a server-only operation is used in client mode.
	ErrNotRunning = errors.New("warden: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("warden: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("warden: invalid configuration")

	// ErrDuplicateProcess is returned when a process name is registered twice in a group.
	ErrDuplicateProcess = errors.New("warden: duplicate process")
)
