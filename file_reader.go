package chd

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	chderrors "github.com/tamirms/chd/errors"
)

// ReadFile loads a function written by WriteFile. The file is memory-mapped
// read-only for the duration of the call; the returned Function holds its
// own copy of the data.
func ReadFile(path string) (*Function, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open function file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat function file: %w", err)
	}
	if stat.Size() < headerSize+footerSize {
		return nil, chderrors.ErrTruncatedFile
	}

	// The checksum pass reads the body front to back.
	fadviseSequential(int(file.Fd()), 0, stat.Size())

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap function file: %w", err)
	}

	f, decodeErr := DecodeFile(mm)
	if err := mm.Unmap(); err != nil {
		return nil, errors.Join(decodeErr, fmt.Errorf("mmap unmap failed: %w", err))
	}
	return f, decodeErr
}

// DecodeFile loads a function from the bytes of a function file. The dump
// checksum is verified before the dump is parsed.
func DecodeFile(data []byte) (*Function, error) {
	if len(data) < headerSize+footerSize {
		return nil, chderrors.ErrTruncatedFile
	}
	hdr, err := decodeHeader(data[:headerSize])
	if err != nil {
		return nil, err
	}

	bodyEnd := uint64(headerSize) + hdr.bodySize()
	switch fileEnd := bodyEnd + footerSize; {
	case uint64(len(data)) < fileEnd:
		return nil, fmt.Errorf("%w: header declares %d bytes, file has %d",
			chderrors.ErrTruncatedFile, fileEnd, len(data))
	case uint64(len(data)) > fileEnd:
		return nil, fmt.Errorf("%w: %d bytes after footer",
			chderrors.ErrCorruptedDump, uint64(len(data))-fileEnd)
	}

	body := data[headerSize:bodyEnd]
	ftr, err := decodeFooter(data[bodyEnd:])
	if err != nil {
		return nil, err
	}
	if got := xxhash.Sum64(body); got != ftr.DumpHash {
		return nil, fmt.Errorf("%w: dump hash %016x, footer says %016x",
			chderrors.ErrChecksumFailed, got, ftr.DumpHash)
	}
	return Load(getWords(body))
}
