//go:build windows

package bwrite

import "os"

// renameInto replaces dst with src. os.Rename on Windows calls
// MoveFileEx with MOVEFILE_REPLACE_EXISTING, which is as close to
// atomic as the platform offers.
func renameInto(src, dst string) error {
	return os.Rename(src, dst)
}
