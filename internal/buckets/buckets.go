// Package buckets implements the three construction phases of the
// displacement function: Mapping hashes keys into buckets, Ordering sorts
// buckets by size, and Searching finds a displacement for every bucket so
// that all keys land on distinct positions.
package buckets

import (
	"errors"
	"fmt"
	"math"

	chderrors "github.com/tamirms/chd/errors"
	"github.com/tamirms/chd/internal/prime"
)

const (
	// KeysPerBucket is the average number of keys per bucket.
	KeysPerBucket = 4

	// MinLoadFactor and MaxLoadFactor bound the ratio of keys to positions.
	MinLoadFactor = 0.5
	MaxLoadFactor = 0.99

	// MaxKeys is the largest key set a function can be built over.
	MaxKeys = 1 << 30

	maxMappingAttempts = 1000
	maxProbesBase      = 1 << 20
	minMaxProbes       = 1024
)

// ErrSearchFailed reports that some bucket could not be placed within the
// probe budget. The caller retries with a new hash seed.
var ErrSearchFailed = errors.New("buckets: no displacement found within the probe budget")

// KeySource is a rewindable sequence of keys with a known count. Read
// returns io.EOF once every key has been returned.
type KeySource interface {
	NumKeys() uint32
	Rewind()
	Read() ([]byte, error)
}

// Buckets holds the sizing of one construction: m keys spread over
// nBuckets buckets and n positions.
type Buckets struct {
	m        uint32
	nBuckets uint32
	n        uint32
}

// ClampLoadFactor limits c to [MinLoadFactor, MaxLoadFactor].
func ClampLoadFactor(c float64) float64 {
	return min(max(c, MinLoadFactor), MaxLoadFactor)
}

// New sizes a construction over numKeys keys. The load factor is clamped to
// [MinLoadFactor, MaxLoadFactor]; n is the smallest odd prime above
// numKeys/loadFactor.
func New(numKeys uint32, loadFactor float64) (*Buckets, error) {
	switch {
	case math.IsNaN(loadFactor):
		return nil, chderrors.ErrInvalidLoadFactor
	case numKeys == 0:
		return nil, chderrors.ErrEmptyKeySet
	case numKeys > MaxKeys:
		return nil, fmt.Errorf("%w: got %d keys", chderrors.ErrTooManyKeys, numKeys)
	}

	c := ClampLoadFactor(loadFactor)
	n, ok := prime.NextOddPrime(uint32(float64(numKeys)/c) + 1)
	if !ok {
		return nil, fmt.Errorf("%w: no 32-bit prime above %d keys at load factor %.2f",
			chderrors.ErrTooManyKeys, numKeys, c)
	}

	return &Buckets{
		m:        numKeys,
		nBuckets: numKeys/KeysPerBucket + 1,
		n:        n,
	}, nil
}

// NumKeys returns the number of keys.
func (b *Buckets) NumKeys() uint32 { return b.m }

// NumBuckets returns the number of buckets.
func (b *Buckets) NumBuckets() uint32 { return b.nBuckets }

// N returns the number of positions, an odd prime.
func (b *Buckets) N() uint32 { return b.n }

// MaxProbes returns the number of probe rounds Searching spends on one size
// class before giving up: (log2(m)/20) * 2^20, at least 1024.
func (b *Buckets) MaxProbes() uint32 {
	p := uint32(math.Log2(float64(b.m)) / 20 * maxProbesBase)
	return max(p, minMaxProbes)
}
