package chd

import (
	"encoding/binary"
	"fmt"

	chderrors "github.com/tamirms/chd/errors"
	"github.com/tamirms/chd/internal/succinct"
)

// dumpHeaderWords is the number of words before the compressed sequence.
const dumpHeaderWords = 3

// DumpSize returns the number of words Dump produces.
func (f *Function) DumpSize() int {
	return dumpHeaderWords + f.cs.DumpSize()
}

// Dump serializes f into 32-bit words:
//
//	[hashSeed][maxValue][nBuckets][compressed displacement table ...]
//
// The compressed table is laid out as
//
//	[lengthRemsLen][lengthRems ...][n][remR][select ...][storeTableLen][storeTable ...][totalLength]
//
// with the select index as [n][universe][bit vector ...][samples ...].
func (f *Function) Dump() []uint32 {
	words := make([]uint32, f.DumpSize())
	f.DumpInto(words)
	return words
}

// DumpInto writes the dump into dst and returns the number of words
// written. dst must hold at least DumpSize() words.
func (f *Function) DumpInto(dst []uint32) int {
	dst[0] = f.seed
	dst[1] = f.maxValue
	dst[2] = f.nBuckets
	return dumpHeaderWords + f.cs.DumpInto(dst[dumpHeaderWords:])
}

// Load reconstructs a function from a dump. The words are copied. Load
// rejects dumps whose declared lengths do not fit the buffer
// (ErrTruncatedDump) or are inconsistent (ErrCorruptedDump), including
// trailing words after the dump; it never reads out of bounds.
func Load(words []uint32) (*Function, error) {
	if len(words) < dumpHeaderWords {
		return nil, fmt.Errorf("%w: header needs %d words, have %d",
			chderrors.ErrTruncatedDump, dumpHeaderWords, len(words))
	}
	f := &Function{
		seed:     words[0],
		maxValue: words[1],
		nBuckets: words[2],
	}
	if f.maxValue < 2 {
		return nil, fmt.Errorf("%w: max value %d", chderrors.ErrCorruptedDump, f.maxValue)
	}
	if f.nBuckets == 0 {
		return nil, fmt.Errorf("%w: zero buckets", chderrors.ErrCorruptedDump)
	}

	cs, used, err := succinct.LoadCompressedSeq(words[dumpHeaderWords:])
	if err != nil {
		return nil, err
	}
	if cs.Len() != f.nBuckets {
		return nil, fmt.Errorf("%w: %d displacements for %d buckets",
			chderrors.ErrCorruptedDump, cs.Len(), f.nBuckets)
	}
	if rest := len(words) - dumpHeaderWords - used; rest != 0 {
		return nil, fmt.Errorf("%w: %d trailing words", chderrors.ErrCorruptedDump, rest)
	}
	f.cs = cs
	return f, nil
}

// MarshalBinary encodes the dump words little-endian, 4 bytes each.
func (f *Function) MarshalBinary() ([]byte, error) {
	words := f.Dump()
	buf := make([]byte, 4*len(words))
	putWords(buf, words)
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary into f.
func (f *Function) UnmarshalBinary(data []byte) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of words",
			chderrors.ErrCorruptedDump, len(data))
	}
	loaded, err := Load(getWords(data))
	if err != nil {
		return err
	}
	*f = *loaded
	return nil
}

func putWords(dst []byte, words []uint32) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(dst[4*i:], w)
	}
}

func getWords(src []byte) []uint32 {
	words := make([]uint32, len(src)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(src[4*i:])
	}
	return words
}
