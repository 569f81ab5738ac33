// Package ports defines the interfaces that connect the warden control plane
// to its collaborators and infrastructure adapters.
//
// # Port Interfaces
//
//   - [Group]: a named collection of supervised processes
//   - [Process]: a single supervised process
//   - [GroupFactory]: creates groups on first registration
//   - [PIDStore]: reads and writes the server pid file
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// internal/supervise provides the reference Group and Process, and
// internal/adapters/fs provides the file-backed PIDStore.
package ports
