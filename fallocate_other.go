//go:build !linux && !darwin

package chd

import "os"

// fallocateFile sets the length of file. Without a native preallocation
// call the blocks may not be reserved until written.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
