//go:build linux

package app

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// setProcessTitle sets the name of the calling OS thread, which is what ps
// and /proc/<pid>/comm show when that thread is the main thread. Callers
// must run on a goroutine locked to the thread they mean to rename; the
// warden binary locks main to the main thread at init. The kernel truncates
// the name to 15 bytes.
func setProcessTitle(title string) error {
	p, err := unix.BytePtrFromString(title)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0)
}
