package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// PIDFile implements ports.PIDStore with a single-line text file.
type PIDFile struct {
	path string
}

// NewPIDFile creates a PIDFile for {baseDir}/pids/{name}.pid.
func NewPIDFile(baseDir, name string) *PIDFile {
	return &PIDFile{path: PIDPath(baseDir, name)}
}

// PIDPath returns the pid file location for an application.
func PIDPath(baseDir, name string) string {
	return filepath.Join(baseDir, "pids", name+".pid")
}

// Read returns the recorded pid.
// Returns 0 and nil error if no pid file exists or it holds no usable pid.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read pid file %q: %w", p.path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

// Write records pid atomically (write to temp file, then rename).
func (p *PIDFile) Write(pid int) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	if err := renameio.WriteFile(p.path, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write pid file %q: %w", p.path, err)
	}
	return nil
}

// Remove deletes the pid file if it still records pid.
// A file taken over by another server is left alone.
func (p *PIDFile) Remove(pid int) error {
	current, err := p.Read()
	if err != nil {
		return err
	}
	if current != pid {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file %q: %w", p.path, err)
	}
	return nil
}

// Path returns the full path to the pid file.
func (p *PIDFile) Path() string {
	return p.path
}
