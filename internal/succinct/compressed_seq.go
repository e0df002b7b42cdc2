package succinct

import (
	"fmt"
	"math"
	mathbits "math/bits"

	chderrors "github.com/tamirms/chd/errors"
	"github.com/tamirms/chd/internal/bits"
)

// CompressedSeq stores a sequence of uint32 values in variable-length codes.
//
// A value v > 0 is coded in L = floor(log2(v+1)) bits as v - (2^L - 1); zero
// takes no bits at all. Codes are packed back to back in storeTable. The
// running sum of code lengths is split at remR bits: the low part goes into
// lengthRems, the high part into a Select index, which together locate any
// code in constant time.
type CompressedSeq struct {
	lengthRems  []uint32
	n           uint32
	remR        uint32
	sel         *Select
	storeTable  []uint32
	totalLength uint32
}

// codeLength returns the number of bits used to code v.
func codeLength(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	return uint32(mathbits.Len64(uint64(v)+1) - 1)
}

func log2Floor(x uint32) uint32 {
	if x == 0 {
		return 0
	}
	return uint32(mathbits.Len32(x) - 1)
}

// NewCompressedSeq encodes values. The sequence must not be empty.
func NewCompressedSeq(values []uint32) (*CompressedSeq, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("succinct: cannot compress an empty sequence")
	}
	if uint64(len(values)) > math.MaxUint32 {
		return nil, fmt.Errorf("succinct: sequence of %d values is too long", len(values))
	}
	n := uint32(len(values))

	lengths := make([]uint32, n)
	var total uint64
	for i, v := range values {
		lengths[i] = codeLength(v)
		total += uint64(lengths[i])
	}
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("succinct: %d code bits overflow 32-bit offsets", total)
	}

	cs := &CompressedSeq{
		n:           n,
		storeTable:  make([]uint32, bits.Words(total)),
		totalLength: uint32(total),
	}

	var pos uint32
	for i, v := range values {
		if lengths[i] == 0 {
			continue
		}
		bits.SetBitsAtPos(cs.storeTable, pos, v-bits.Mask(lengths[i]), lengths[i])
		pos += lengths[i]
	}

	cs.remR = max(log2Floor(cs.totalLength/n), 1)
	cs.lengthRems = make([]uint32, bits.Words(uint64(n)*uint64(cs.remR)))
	remsMask := bits.Mask(cs.remR)

	// lengths is reused for the high parts of the running sums.
	var sum uint32
	for i := range lengths {
		sum += lengths[i]
		bits.SetBitsValue(cs.lengthRems, uint32(i), sum&remsMask, cs.remR, remsMask)
		lengths[i] = sum >> cs.remR
	}

	sel, err := NewSelect(lengths, cs.totalLength>>cs.remR)
	if err != nil {
		return nil, err
	}
	cs.sel = sel
	return cs, nil
}

// Len returns the number of values in the sequence.
func (cs *CompressedSeq) Len() uint32 { return cs.n }

// TotalLength returns the number of code bits in the store table.
func (cs *CompressedSeq) TotalLength() uint32 { return cs.totalLength }

// RemainderBits returns the number of low bits of each running sum kept
// outside the select index.
func (cs *CompressedSeq) RemainderBits() uint32 { return cs.remR }

// Query returns the idx-th value. idx must be less than Len().
func (cs *CompressedSeq) Query(idx uint32) uint32 {
	start, length := cs.span(idx)
	if length == 0 {
		return 0
	}
	return bits.GetBitsAtPos(cs.storeTable, start, length) + bits.Mask(length)
}

// span returns the bit offset and length of the idx-th code.
func (cs *CompressedSeq) span(idx uint32) (start, length uint32) {
	remsMask := bits.Mask(cs.remR)

	var selRes uint32
	if idx == 0 {
		selRes = cs.sel.Query(0)
	} else {
		selRes = cs.sel.Query(idx - 1)
		start = (selRes-(idx-1))<<cs.remR + bits.GetBitsValue(cs.lengthRems, idx-1, cs.remR, remsMask)
		selRes = cs.sel.NextQuery(selRes)
	}
	end := (selRes-idx)<<cs.remR + bits.GetBitsValue(cs.lengthRems, idx, cs.remR, remsMask)
	return start, end - start
}

// DumpSize returns the number of words DumpInto writes.
func (cs *CompressedSeq) DumpSize() int {
	return 1 + len(cs.lengthRems) + 2 + cs.sel.DumpSize() + 1 + len(cs.storeTable) + 1
}

// DumpInto writes the sequence into dst and returns the number of words
// written. dst must hold at least DumpSize() words.
//
// Layout: [lengthRemsLen][lengthRems ...][n][remR][Select ...]
// [storeTableLen][storeTable ...][totalLength].
func (cs *CompressedSeq) DumpInto(dst []uint32) int {
	i := 0
	dst[i] = uint32(len(cs.lengthRems))
	i++
	i += copy(dst[i:], cs.lengthRems)
	dst[i] = cs.n
	dst[i+1] = cs.remR
	i += 2
	i += cs.sel.DumpInto(dst[i:])
	dst[i] = uint32(len(cs.storeTable))
	i++
	i += copy(dst[i:], cs.storeTable)
	dst[i] = cs.totalLength
	i++
	return i
}

// wordReader walks a dump, reporting truncation instead of panicking.
type wordReader struct {
	words []uint32
	off   int
}

func (r *wordReader) next(what string) (uint32, error) {
	if r.off >= len(r.words) {
		return 0, fmt.Errorf("%w: missing %s at word %d", chderrors.ErrTruncatedDump, what, r.off)
	}
	v := r.words[r.off]
	r.off++
	return v, nil
}

func (r *wordReader) array(what string, length uint32) ([]uint32, error) {
	if uint64(length) > uint64(len(r.words)-r.off) {
		return nil, fmt.Errorf("%w: %s declares %d words, %d remain",
			chderrors.ErrTruncatedDump, what, length, len(r.words)-r.off)
	}
	out := make([]uint32, length)
	r.off += copy(out, r.words[r.off:])
	return out, nil
}

// LoadCompressedSeq decodes a sequence written by DumpInto from the front of
// words. It returns the sequence and the number of words consumed. Every
// declared length is checked against the buffer and against the sizes the
// header implies, and every code is checked to lie inside the store table,
// so queries on a loaded sequence never read out of bounds.
func LoadCompressedSeq(words []uint32) (*CompressedSeq, int, error) {
	r := &wordReader{words: words}
	cs := &CompressedSeq{}

	remsLen, err := r.next("length remainder count")
	if err != nil {
		return nil, 0, err
	}
	if cs.lengthRems, err = r.array("length remainders", remsLen); err != nil {
		return nil, 0, err
	}
	if cs.n, err = r.next("sequence length"); err != nil {
		return nil, 0, err
	}
	if cs.remR, err = r.next("remainder width"); err != nil {
		return nil, 0, err
	}

	sel, used, err := LoadSelect(words[r.off:])
	if err != nil {
		return nil, 0, err
	}
	cs.sel = sel
	r.off += used

	storeLen, err := r.next("store table length")
	if err != nil {
		return nil, 0, err
	}
	if cs.storeTable, err = r.array("store table", storeLen); err != nil {
		return nil, 0, err
	}
	if cs.totalLength, err = r.next("total length"); err != nil {
		return nil, 0, err
	}

	if err := cs.validate(); err != nil {
		return nil, 0, err
	}
	return cs, r.off, nil
}

// validate cross-checks the decoded fields and walks every code boundary.
func (cs *CompressedSeq) validate() error {
	switch {
	case cs.n == 0:
		return fmt.Errorf("%w: empty sequence", chderrors.ErrCorruptedDump)
	case cs.remR == 0 || cs.remR > 32:
		return fmt.Errorf("%w: remainder width %d", chderrors.ErrCorruptedDump, cs.remR)
	case len(cs.lengthRems) != bits.Words(uint64(cs.n)*uint64(cs.remR)):
		return fmt.Errorf("%w: %d length remainder words for n=%d width=%d",
			chderrors.ErrCorruptedDump, len(cs.lengthRems), cs.n, cs.remR)
	case len(cs.storeTable) != bits.Words(uint64(cs.totalLength)):
		return fmt.Errorf("%w: %d store words for %d code bits",
			chderrors.ErrCorruptedDump, len(cs.storeTable), cs.totalLength)
	case cs.sel.Len() != cs.n:
		return fmt.Errorf("%w: select holds %d values, sequence has %d",
			chderrors.ErrCorruptedDump, cs.sel.Len(), cs.n)
	case uint64(cs.sel.Universe()) != uint64(cs.totalLength)>>cs.remR:
		return fmt.Errorf("%w: select universe %d does not match total length %d",
			chderrors.ErrCorruptedDump, cs.sel.Universe(), cs.totalLength)
	}

	remsMask := bits.Mask(cs.remR)
	var prev uint64
	for i := range cs.n {
		high := uint64(cs.sel.Query(i) - i)
		end := high<<cs.remR + uint64(bits.GetBitsValue(cs.lengthRems, i, cs.remR, remsMask))
		if end < prev || end-prev > 32 {
			return fmt.Errorf("%w: code %d spans bits [%d, %d)",
				chderrors.ErrCorruptedDump, i, prev, end)
		}
		prev = end
	}
	if prev != uint64(cs.totalLength) {
		return fmt.Errorf("%w: codes end at bit %d, total length is %d",
			chderrors.ErrCorruptedDump, prev, cs.totalLength)
	}
	return nil
}
