package chd

import (
	"bytes"
	"io"
	"math"
)

// KeySource is a rewindable sequence of keys with a known count.
//
// Build reads the source once per mapping attempt: it calls Rewind, then
// Read exactly NumKeys times. Every pass must return the same keys in the
// same order. Read returns io.EOF once the sequence is exhausted. A returned
// key only needs to stay valid until the next call to Read.
type KeySource interface {
	NumKeys() uint32
	Rewind()
	Read() ([]byte, error)
}

// SliceKeySource serves keys from a slice.
type SliceKeySource struct {
	keys [][]byte
	pos  int
}

// NewSliceKeySource returns a KeySource over keys. The slice is not copied.
func NewSliceKeySource(keys [][]byte) *SliceKeySource {
	return &SliceKeySource{keys: keys}
}

// NumKeys returns the number of keys, saturated at math.MaxUint32.
func (s *SliceKeySource) NumKeys() uint32 {
	return uint32(min(uint64(len(s.keys)), math.MaxUint32))
}

// Rewind restarts the sequence.
func (s *SliceKeySource) Rewind() { s.pos = 0 }

// Read returns the next key.
func (s *SliceKeySource) Read() ([]byte, error) {
	if s.pos >= len(s.keys) {
		return nil, io.EOF
	}
	k := s.keys[s.pos]
	s.pos++
	return k, nil
}

// LineKeySource serves the lines of a newline-delimited buffer as keys.
// A trailing "\r" is stripped from each line, and a final newline does not
// start an extra empty key. Keys alias the buffer.
type LineKeySource struct {
	data []byte
	rest []byte
	n    uint32
}

// NewLineKeySource returns a KeySource over the lines of data. The buffer
// may be a memory-mapped file; it must not change while the source is in
// use.
func NewLineKeySource(data []byte) *LineKeySource {
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return &LineKeySource{
		data: data,
		rest: data,
		n:    uint32(min(uint64(n), math.MaxUint32)),
	}
}

// NumKeys returns the number of lines.
func (s *LineKeySource) NumKeys() uint32 { return s.n }

// Rewind restarts the sequence at the first line.
func (s *LineKeySource) Rewind() { s.rest = s.data }

// Read returns the next line without its terminator.
func (s *LineKeySource) Read() ([]byte, error) {
	if len(s.rest) == 0 {
		return nil, io.EOF
	}
	line, rest, _ := bytes.Cut(s.rest, []byte{'\n'})
	s.rest = rest
	return bytes.TrimSuffix(line, []byte{'\r'}), nil
}
