// Package succinct implements the compact encoding of the displacement
// table: a select index over a non-decreasing sequence and a sequence of
// variable-length integers addressed through it.
package succinct

import (
	"fmt"
	"math"
	mathbits "math/bits"

	chderrors "github.com/tamirms/chd/errors"
	"github.com/tamirms/chd/internal/bits"
)

const (
	sampleShift = 7
	sampleStep  = 1 << sampleShift
)

// selectHeaderWords is the number of fixed words in a Select dump.
const selectHeaderWords = 2

// Select answers select queries over a non-decreasing sequence of n values
// in [0, universe].
//
// Value i is recorded as a one at bit values[i]+i of an (n+universe)-bit
// vector, so the i-th one sits at a position whose distance from i is the
// value itself. The position of every 128th one is sampled so a query scans
// a bounded run of words.
type Select struct {
	n        uint32
	universe uint32
	bits     []uint32
	samples  []uint32
}

func numSamples(n uint32) int {
	return int((uint64(n) + sampleStep - 1) >> sampleShift)
}

// NewSelect builds a select index over values, which must be non-decreasing
// and no larger than universe.
func NewSelect(values []uint32, universe uint32) (*Select, error) {
	if uint64(len(values))+uint64(universe) > math.MaxUint32 {
		return nil, fmt.Errorf("succinct: %d values over universe %d overflow 32-bit positions", len(values), universe)
	}
	n := uint32(len(values))
	s := &Select{
		n:        n,
		universe: universe,
		bits:     make([]uint32, bits.Words(uint64(n)+uint64(universe))),
		samples:  make([]uint32, numSamples(n)),
	}

	var prev uint32
	for i, v := range values {
		if v < prev {
			return nil, fmt.Errorf("succinct: select input decreases at index %d (%d after %d)", i, v, prev)
		}
		if v > universe {
			return nil, fmt.Errorf("succinct: select value %d at index %d exceeds universe %d", v, i, universe)
		}
		pos := v + uint32(i)
		bits.SetBit(s.bits, pos)
		if i&(sampleStep-1) == 0 {
			s.samples[i>>sampleShift] = pos
		}
		prev = v
	}
	return s, nil
}

// Len returns the number of values in the index.
func (s *Select) Len() uint32 { return s.n }

// Universe returns the largest value the index may hold.
func (s *Select) Universe() uint32 { return s.universe }

// Query returns the bit position of the (i+1)-th one. Query(i) - i is the
// i-th value. i must be less than Len().
func (s *Select) Query(i uint32) uint32 {
	return s.scan(s.samples[i>>sampleShift], i&(sampleStep-1))
}

// NextQuery returns the position of the first one after pos. pos must be
// the position of a one other than the last.
func (s *Select) NextQuery(pos uint32) uint32 {
	return s.scan(pos+1, 0)
}

// scan returns the position of the (rank+1)-th one at or after pos.
func (s *Select) scan(pos, rank uint32) uint32 {
	w := pos >> 5
	word := s.bits[w] &^ (uint32(1)<<(pos&31) - 1)
	for {
		c := uint32(mathbits.OnesCount32(word))
		if rank < c {
			break
		}
		rank -= c
		w++
		word = s.bits[w]
	}
	for ; rank > 0; rank-- {
		word &= word - 1
	}
	return w<<5 + uint32(mathbits.TrailingZeros32(word))
}

// DumpSize returns the number of words DumpInto writes.
func (s *Select) DumpSize() int {
	return selectHeaderWords + len(s.bits) + len(s.samples)
}

// DumpInto writes the index into dst and returns the number of words
// written. dst must hold at least DumpSize() words.
//
// Layout: [n][universe][bit vector ...][samples ...]. Both array lengths
// follow from n and universe.
func (s *Select) DumpInto(dst []uint32) int {
	dst[0] = s.n
	dst[1] = s.universe
	i := selectHeaderWords
	i += copy(dst[i:], s.bits)
	i += copy(dst[i:], s.samples)
	return i
}

// LoadSelect decodes an index written by DumpInto from the front of words.
// It returns the index and the number of words consumed. The data is copied.
func LoadSelect(words []uint32) (*Select, int, error) {
	if len(words) < selectHeaderWords {
		return nil, 0, fmt.Errorf("%w: select header needs %d words, have %d",
			chderrors.ErrTruncatedDump, selectHeaderWords, len(words))
	}
	n, universe := words[0], words[1]
	if uint64(n)+uint64(universe) > math.MaxUint32 {
		return nil, 0, fmt.Errorf("%w: select size n=%d universe=%d overflows",
			chderrors.ErrCorruptedDump, n, universe)
	}

	nBits := bits.Words(uint64(n) + uint64(universe))
	nSamples := numSamples(n)
	need := selectHeaderWords + nBits + nSamples
	if len(words) < need {
		return nil, 0, fmt.Errorf("%w: select needs %d words, have %d",
			chderrors.ErrTruncatedDump, need, len(words))
	}

	s := &Select{
		n:        n,
		universe: universe,
		bits:     make([]uint32, nBits),
		samples:  make([]uint32, nSamples),
	}
	copy(s.bits, words[selectHeaderWords:])
	copy(s.samples, words[selectHeaderWords+nBits:])

	if err := s.validate(); err != nil {
		return nil, 0, err
	}
	return s, need, nil
}

// validate checks that the bit vector holds exactly n ones inside its
// n+universe bits and that every sample points at the right one. A valid
// index never scans past the end of its bit vector.
func (s *Select) validate() error {
	limit := uint64(s.n) + uint64(s.universe)
	var rank uint32
	for w, word := range s.bits {
		for word != 0 {
			pos := uint64(w)<<5 + uint64(mathbits.TrailingZeros32(word))
			if pos >= limit {
				return fmt.Errorf("%w: select bit %d set beyond length %d",
					chderrors.ErrCorruptedDump, pos, limit)
			}
			if rank >= s.n {
				return fmt.Errorf("%w: select holds more than %d ones",
					chderrors.ErrCorruptedDump, s.n)
			}
			if rank&(sampleStep-1) == 0 && uint64(s.samples[rank>>sampleShift]) != pos {
				return fmt.Errorf("%w: select sample %d is %d, want %d",
					chderrors.ErrCorruptedDump, rank>>sampleShift, s.samples[rank>>sampleShift], pos)
			}
			rank++
			word &= word - 1
		}
	}
	if rank != s.n {
		return fmt.Errorf("%w: select holds %d ones, want %d",
			chderrors.ErrCorruptedDump, rank, s.n)
	}
	return nil
}
