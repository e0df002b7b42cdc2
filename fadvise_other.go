//go:build !linux

package chd

func fadviseSequential(fd int, offset, length int64) {}
