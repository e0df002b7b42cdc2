package buckets

import "github.com/tamirms/chd/internal/jenkins"

// Triple derives the bucket g, the base position f and the step h of key
// under seed. h is never zero, so distinct probe0 values move the key.
func Triple(seed uint32, key []byte, nBuckets, n uint32) (g, f, h uint32) {
	hl := jenkins.Hash(seed, key)
	return hl[0] % nBuckets, hl[1] % n, hl[2]%(n-1) + 1
}

// Position returns (f + h*probe0 + probe1) mod n.
func Position(f, h, probe0, probe1, n uint32) uint32 {
	return uint32((uint64(f) + uint64(h)*uint64(probe0) + uint64(probe1)) % uint64(n))
}

// Displace maps a key with base f and step h through the displacement
// value disp = probe0 + probe1*n of its bucket.
func Displace(f, h, disp, n uint32) uint32 {
	return Position(f, h, disp%n, disp/n, n)
}
