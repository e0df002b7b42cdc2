package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

func TestSingleBitOps(t *testing.T) {
	words := make([]uint32, Words(100))
	if len(words) != 4 {
		t.Fatalf("Words(100) = %d, want 4", len(words))
	}

	for _, i := range []uint32{0, 1, 31, 32, 63, 64, 99} {
		if GetBit(words, i) {
			t.Fatalf("bit %d set before SetBit", i)
		}
		SetBit(words, i)
		if !GetBit(words, i) {
			t.Fatalf("bit %d not set after SetBit", i)
		}
	}
	if words[0] != 0x80000003 {
		t.Errorf("words[0] = 0x%08X, want 0x80000003", words[0])
	}
	if words[1] != 0x80000001 {
		t.Errorf("words[1] = 0x%08X, want 0x80000001", words[1])
	}

	UnsetBit(words, 31)
	if GetBit(words, 31) {
		t.Error("bit 31 still set after UnsetBit")
	}
	// Unsetting a clear bit must leave it clear.
	UnsetBit(words, 31)
	if GetBit(words, 31) {
		t.Error("UnsetBit on a clear bit toggled it")
	}
	if !GetBit(words, 32) || !GetBit(words, 0) {
		t.Error("UnsetBit disturbed neighbouring bits")
	}

	Zero(words)
	for i, w := range words {
		if w != 0 {
			t.Errorf("words[%d] = 0x%08X after Zero", i, w)
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		length uint32
		want   uint32
	}{
		{0, 0},
		{1, 1},
		{5, 0x1F},
		{31, 0x7FFFFFFF},
		{32, 0xFFFFFFFF},
	}
	for _, tc := range tests {
		if got := Mask(tc.length); got != tc.want {
			t.Errorf("Mask(%d) = 0x%X, want 0x%X", tc.length, got, tc.want)
		}
	}
}

// TestBitsAtPosStraddle writes fields that cross a word boundary and checks
// both halves land in the right words.
func TestBitsAtPosStraddle(t *testing.T) {
	words := make([]uint32, 2)
	SetBitsAtPos(words, 28, 0xFF, 8)
	if words[0] != 0xF0000000 {
		t.Errorf("words[0] = 0x%08X, want 0xF0000000", words[0])
	}
	if words[1] != 0x0000000F {
		t.Errorf("words[1] = 0x%08X, want 0x0000000F", words[1])
	}
	if got := GetBitsAtPos(words, 28, 8); got != 0xFF {
		t.Errorf("GetBitsAtPos = 0x%X, want 0xFF", got)
	}

	// Overwrite with a different value: stale bits must be cleared.
	SetBitsAtPos(words, 28, 0x5A, 8)
	if got := GetBitsAtPos(words, 28, 8); got != 0x5A {
		t.Errorf("after overwrite GetBitsAtPos = 0x%X, want 0x5A", got)
	}
	if words[0]&0x0FFFFFFF != 0 || words[1]&^0xF != 0 {
		t.Errorf("overwrite leaked outside field: 0x%08X 0x%08X", words[0], words[1])
	}
}

func TestBitsAtPosZeroLength(t *testing.T) {
	words := []uint32{0xFFFFFFFF}
	// pos beyond the last word must not be touched when length is 0.
	SetBitsAtPos(words, 32, 0xFFFF, 0)
	if got := GetBitsAtPos(words, 32, 0); got != 0 {
		t.Errorf("GetBitsAtPos(length=0) = %d, want 0", got)
	}
	if words[0] != 0xFFFFFFFF {
		t.Errorf("zero-length write modified words: 0x%08X", words[0])
	}
}

func TestBitsAtPosFullWord(t *testing.T) {
	words := make([]uint32, 3)
	SetBitsAtPos(words, 0, 0xDEADBEEF, 32)
	SetBitsAtPos(words, 45, 0xCAFEBABE, 32)
	if got := GetBitsAtPos(words, 0, 32); got != 0xDEADBEEF {
		t.Errorf("aligned 32-bit field = 0x%08X, want 0xDEADBEEF", got)
	}
	if got := GetBitsAtPos(words, 45, 32); got != 0xCAFEBABE {
		t.Errorf("unaligned 32-bit field = 0x%08X, want 0xCAFEBABE", got)
	}
}

// TestBitsAtPosRandomRoundTrip packs random-width fields back-to-back and
// reads them all back.
func TestBitsAtPosRandomRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	const numFields = 5000

	lengths := make([]uint32, numFields)
	values := make([]uint32, numFields)
	var total uint64
	for i := range lengths {
		lengths[i] = rng.Uint32N(33)
		values[i] = rng.Uint32() & Mask(lengths[i])
		total += uint64(lengths[i])
	}

	words := make([]uint32, Words(total))
	var pos uint32
	for i := range lengths {
		SetBitsAtPos(words, pos, values[i], lengths[i])
		pos += lengths[i]
	}

	pos = 0
	for i := range lengths {
		if got := GetBitsAtPos(words, pos, lengths[i]); got != values[i] {
			t.Fatalf("field %d (pos=%d, len=%d) = 0x%X, want 0x%X", i, pos, lengths[i], got, values[i])
		}
		pos += lengths[i]
	}
}

func TestBitsValueUniformFields(t *testing.T) {
	rng := newTestRNG(t)

	for _, length := range []uint32{1, 3, 7, 13, 31, 32} {
		mask := Mask(length)
		const n = 1000
		words := make([]uint32, Words(uint64(n)*uint64(length)))
		want := make([]uint32, n)
		for i := range want {
			want[i] = rng.Uint32() & mask
			SetBitsValue(words, uint32(i), want[i], length, mask)
		}
		for i := range want {
			if got := GetBitsValue(words, uint32(i), length, mask); got != want[i] {
				t.Fatalf("length=%d: field %d = 0x%X, want 0x%X", length, i, got, want[i])
			}
		}

		// Rewrite every other field and make sure neighbours survive.
		for i := 0; i < n; i += 2 {
			want[i] = ^want[i] & mask
			SetBitsValue(words, uint32(i), want[i], length, mask)
		}
		for i := range want {
			if got := GetBitsValue(words, uint32(i), length, mask); got != want[i] {
				t.Fatalf("length=%d after rewrite: field %d = 0x%X, want 0x%X", length, i, got, want[i])
			}
		}
	}
}

// TestSetBitsIgnoresHighBits verifies that bits above the field width are
// masked instead of corrupting the next field.
func TestSetBitsIgnoresHighBits(t *testing.T) {
	words := make([]uint32, 1)
	SetBitsAtPos(words, 0, 0xFFFFFFFF, 4)
	if words[0] != 0xF {
		t.Errorf("words[0] = 0x%08X, want 0x0000000F", words[0])
	}
}
