// Package bits provides low-level bit manipulation primitives over packed
// arrays of 32-bit words.
//
// Bit i lives in word i>>5 at position i&31. Fields of up to 32 bits may
// start at any bit offset; a field that crosses a word boundary is split
// into a low part in the first word and a high part in the next one.
package bits

// Words returns the number of 32-bit words needed to hold nbits bits.
func Words(nbits uint64) int {
	return int((nbits + 31) >> 5)
}

// Mask returns a mask of the low length bits. Mask(32) is all ones.
func Mask(length uint32) uint32 {
	return uint32((uint64(1) << length) - 1)
}

// GetBit reports whether bit i is set.
func GetBit(words []uint32, i uint32) bool {
	return words[i>>5]&(1<<(i&31)) != 0
}

// SetBit sets bit i.
func SetBit(words []uint32, i uint32) {
	words[i>>5] |= 1 << (i & 31)
}

// UnsetBit clears bit i.
func UnsetBit(words []uint32, i uint32) {
	words[i>>5] &^= 1 << (i & 31)
}

// Zero clears every word.
func Zero(words []uint32) {
	clear(words)
}

// SetBitsAtPos writes the low length bits of value at bit offset pos.
// Bits of value above length are ignored. length 0 is a no-op.
func SetBitsAtPos(words []uint32, pos, value, length uint32) {
	if length == 0 {
		return
	}
	setField(words, uint64(pos), value, length, Mask(length))
}

// GetBitsAtPos reads a length-bit field at bit offset pos.
func GetBitsAtPos(words []uint32, pos, length uint32) uint32 {
	if length == 0 {
		return 0
	}
	return getField(words, uint64(pos), length, Mask(length))
}

// SetBitsValue writes value into the index-th field of a uniformly packed
// array of length-bit fields. mask must equal Mask(length).
func SetBitsValue(words []uint32, index, value, length, mask uint32) {
	if length == 0 {
		return
	}
	setField(words, uint64(index)*uint64(length), value, length, mask)
}

// GetBitsValue reads the index-th field of a uniformly packed array of
// length-bit fields. mask must equal Mask(length).
func GetBitsValue(words []uint32, index, length, mask uint32) uint32 {
	if length == 0 {
		return 0
	}
	return getField(words, uint64(index)*uint64(length), length, mask)
}

func setField(words []uint32, pos uint64, value, length, mask uint32) {
	wordIdx := pos >> 5
	shift1 := uint32(pos & 31)
	shift2 := 32 - shift1
	value &= mask

	words[wordIdx] &^= mask << shift1
	words[wordIdx] |= value << shift1
	if shift2 < length {
		words[wordIdx+1] &^= mask >> shift2
		words[wordIdx+1] |= value >> shift2
	}
}

func getField(words []uint32, pos uint64, length, mask uint32) uint32 {
	wordIdx := pos >> 5
	shift1 := uint32(pos & 31)
	shift2 := 32 - shift1

	v := (words[wordIdx] >> shift1) & mask
	if shift2 < length {
		v |= (words[wordIdx+1] << shift2) & mask
	}
	return v
}
