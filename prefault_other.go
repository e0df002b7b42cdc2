//go:build !linux

package chd

func prefaultRegion(data []byte) {}
