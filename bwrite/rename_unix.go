//go:build darwin || linux

package bwrite

import "golang.org/x/sys/unix"

// renameInto replaces dst with src atomically. On POSIX, rename(2)
// already does this; go through x/sys/unix rather than os.Rename so
// the syscall boundary matches the rest of the build pipeline's
// platform-specific file handling.
func renameInto(src, dst string) error {
	return unix.Rename(src, dst)
}
