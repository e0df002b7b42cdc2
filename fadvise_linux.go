//go:build linux

package chd

import "golang.org/x/sys/unix"

// fadviseSequential tells the kernel the range will be read once, in order.
// Errors are ignored.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
