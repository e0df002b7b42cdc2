package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// keyFile is a read-only memory-mapped key file.
type keyFile struct {
	file *os.File
	mmap mmap.MMap
}

func openKeyFile(path string) (*keyFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("stat key file: %w", err), file.Close())
	}
	kf := &keyFile{file: file}
	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return kf, nil
	}
	kf.mmap, err = mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("mmap key file: %w", err), file.Close())
	}
	return kf, nil
}

// data returns the file contents. It is valid until Close.
func (kf *keyFile) data() []byte { return kf.mmap }

func (kf *keyFile) Close() error {
	var unmapErr error
	if kf.mmap != nil {
		unmapErr = kf.mmap.Unmap()
		kf.mmap = nil
	}
	var closeErr error
	if kf.file != nil {
		closeErr = kf.file.Close()
		kf.file = nil
	}
	return errors.Join(unmapErr, closeErr)
}
