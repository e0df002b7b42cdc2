package chd

import (
	"encoding/binary"

	chderrors "github.com/tamirms/chd/errors"
)

const (
	// magic number for function files
	// "CHDF" in little-endian
	magic = uint32(0x46444843)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (32 bytes)
	headerSize = 32

	// footerSize is the exact size of the serialized footer (16 bytes)
	footerSize = 16
)

// header is the 32-byte function file header.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x46444843 ("CHDF")
//	4       2     Version   0x0001
//	6       2     Reserved  (zero)
//	8       4     NumWords  uint32_le (dump length in words)
//	12      20    Reserved  [20]byte (zero)
//
// The dump follows as NumWords little-endian uint32 words.
type header struct {
	Magic    uint32
	Version  uint16
	NumWords uint32
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	clear(buf[6:8])
	binary.LittleEndian.PutUint32(buf[8:12], h.NumWords)
	clear(buf[12:headerSize])
}

// decodeHeader parses a 32-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, chderrors.ErrTruncatedFile
	}

	h := &header{
		Magic:    binary.LittleEndian.Uint32(buf[0:4]),
		Version:  binary.LittleEndian.Uint16(buf[4:6]),
		NumWords: binary.LittleEndian.Uint32(buf[8:12]),
	}

	if h.Magic != magic {
		return nil, chderrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, chderrors.ErrInvalidVersion
	}
	return h, nil
}

// bodySize returns the size of the dump region in bytes.
func (h *header) bodySize() uint64 {
	return uint64(h.NumWords) * 4
}

// footer is the 16-byte function file footer.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       8     DumpHash  uint64_le (xxHash64 of the dump region)
//	8       8     Reserved  [8]byte (zero)
type footer struct {
	DumpHash uint64
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.DumpHash)
	clear(buf[8:footerSize])
}

// decodeFooter parses a 16-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, chderrors.ErrTruncatedFile
	}
	return &footer{DumpHash: binary.LittleEndian.Uint64(buf[0:8])}, nil
}

// fileSize returns the size of a function file holding numWords dump words.
func fileSize(numWords int) int64 {
	return headerSize + 4*int64(numWords) + footerSize
}
