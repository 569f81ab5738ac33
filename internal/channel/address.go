package channel

import "path/filepath"

// SocketPath returns the channel address of an application.
func SocketPath(baseDir, name string) string {
	return filepath.Join(baseDir, "socks", name+".sock")
}
