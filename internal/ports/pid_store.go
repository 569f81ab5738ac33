package ports

// PIDStore persists the pid of the running server.
type PIDStore interface {
	// Read returns the recorded pid. It returns 0 and nil error if no pid is recorded.
	Read() (int, error)

	// Write records pid atomically.
	Write(pid int) error

	// Remove deletes the record if it still holds pid.
	Remove(pid int) error

	// Path returns the location of the record.
	Path() string
}
