// Package domain contains the core types of the warden control plane.
//
// The types in this package have no dependencies on infrastructure:
//   - [Verb]: the closed set of commands the server accepts
//   - [Command]: a parsed "verb[:target]" request line
//   - [WorkItem]: a queued mutating command awaiting the worker
//
// Sentinel errors returned by the public API are declared in errors.go and
// can be checked with errors.Is.
package domain
