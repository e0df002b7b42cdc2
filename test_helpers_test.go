package chd

import (
	"context"
	"encoding/binary"
	"fmt"
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

// fillFromRNG fills buf with pseudo-random bytes from rng.
func fillFromRNG(rng *rand.Rand, buf []byte) {
	for i := 0; i+8 <= len(buf); i += 8 {
		binary.LittleEndian.PutUint64(buf[i:], rng.Uint64())
	}
	if tail := len(buf) % 8; tail > 0 {
		v := rng.Uint64()
		start := len(buf) - tail
		for j := 0; j < tail; j++ {
			buf[start+j] = byte(v >> (j * 8))
		}
	}
}

// generateRandomKeys creates n distinct pseudo-random keys of the specified size.
func generateRandomKeys(rng *rand.Rand, n, keySize int) [][]byte {
	keys := make([][]byte, 0, n)
	seen := make(map[string]struct{}, n)
	for len(keys) < n {
		k := make([]byte, keySize)
		fillFromRNG(rng, k)
		if _, dup := seen[string(k)]; dup {
			continue
		}
		seen[string(k)] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// numberedKeys returns "KEY-0" through "KEY-(n-1)".
func numberedKeys(n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = fmt.Appendf(nil, "KEY-%d", i)
	}
	return keys
}

// buildTestFunction builds over keys with a per-test generator.
func buildTestFunction(t testing.TB, keys [][]byte, opts ...BuildOption) *Function {
	t.Helper()
	opts = append([]BuildOption{WithRand(newTestRNG(t))}, opts...)
	f, err := BuildKeys(context.Background(), keys, opts...)
	if err != nil {
		t.Fatalf("BuildKeys(%d keys): %v", len(keys), err)
	}
	return f
}

// requireBijection checks that keys hash to distinct values below MaxValue.
func requireBijection(t testing.TB, f *Function, keys [][]byte) {
	t.Helper()
	seen := make(map[uint32]int, len(keys))
	for i, k := range keys {
		v := f.Hash(k)
		if v >= f.MaxValue() {
			t.Fatalf("Hash(%q) = %d, want < %d", k, v, f.MaxValue())
		}
		if prev, ok := seen[v]; ok {
			t.Fatalf("keys %d (%q) and %d (%q) both hash to %d", prev, keys[prev], i, k, v)
		}
		seen[v] = i
	}
}
