// Package supervise provides the reference Group and Process used by the
// warden daemon.
//
// A Process runs a shell command, restarts it with exponential backoff when
// it dies while monitored, and stops monitoring it when it flaps (restarts
// too often within a window). All time-dependent behaviour happens in Tick;
// lifecycle commands only record intent and deliver signals, so they return
// quickly when called from the worker.
package supervise
