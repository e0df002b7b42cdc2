package chd

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
)

// WriteFile stores f at path in the function file format:
//
//	[Header 32B][Dump NumWords×4B][Footer 16B]
//
// The file is pre-allocated and written through a read-write memory map.
// On failure the partially written file is removed.
func WriteFile(path string, f *Function) error {
	size := fileSize(f.DumpSize())

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create function file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := fallocateFile(file, size); err != nil {
		primaryErr := fmt.Errorf("allocate function file: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap function file: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}

	prefaultRegion(mm)
	encodeFileInto(mm, f)

	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close(), os.Remove(path))
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", err)
		return errors.Join(primaryErr, file.Close(), os.Remove(path))
	}
	return file.Close()
}

// EncodeFile returns f in the function file format.
func EncodeFile(f *Function) []byte {
	buf := make([]byte, fileSize(f.DumpSize()))
	encodeFileInto(buf, f)
	return buf
}

// encodeFileInto writes header, dump and footer into buf, which must be
// exactly fileSize(f.DumpSize()) bytes.
func encodeFileInto(buf []byte, f *Function) {
	words := f.Dump()

	hdr := header{
		Magic:    magic,
		Version:  version,
		NumWords: uint32(len(words)),
	}
	hdr.encodeTo(buf[:headerSize])

	body := buf[headerSize : headerSize+4*len(words)]
	putWords(body, words)

	ftr := footer{DumpHash: xxhash.Sum64(body)}
	ftr.encodeTo(buf[headerSize+len(body):])
}
