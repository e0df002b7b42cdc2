package chd

import (
	"context"
	"errors"
	"fmt"

	chderrors "github.com/tamirms/chd/errors"
	"github.com/tamirms/chd/internal/buckets"
	"github.com/tamirms/chd/internal/succinct"
)

// maxBuildAttempts bounds the number of Mapping, Ordering and Searching
// rounds before Build gives up.
const maxBuildAttempts = 100

// Function is a minimal perfect hash function over a fixed key set. Every
// key of the set maps to a distinct value in [0, MaxValue()).
//
// A Function is immutable and safe for concurrent use.
type Function struct {
	seed     uint32
	maxValue uint32
	nBuckets uint32
	cs       *succinct.CompressedSeq
}

// Stats describes the size of a Function.
type Stats struct {
	MaxValue      uint32
	NumBuckets    uint32
	CodeBits      uint32 // bits spent on displacement codes
	RemainderBits uint32 // low bits of each code offset kept outside the select index
	SizeBytes     int    // serialized size
	BitsPerValue  float64
}

// Build constructs a function over the keys of src.
//
// The keys must be distinct. Construction hashes the keys into buckets of
// about four, then searches a displacement for each bucket, largest first,
// that moves all of its keys onto free positions. A failed search restarts
// with a new hash seed. The displacements are stored compressed.
//
// Build fails with ErrEmptyKeySet, ErrTooManyKeys or ErrInvalidLoadFactor
// on bad input, ErrDuplicateKeys when no seed separates the keys, and
// ErrConstructionExhausted when every attempt's search fails.
func Build(ctx context.Context, src KeySource, opts ...BuildOption) (*Function, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	b, err := buckets.New(src.NumKeys(), cfg.loadFactor)
	if err != nil {
		return nil, err
	}
	rng := cfg.random()
	log := cfg.logger.With("keys", b.NumKeys(), "buckets", b.NumBuckets(), "n", b.N())

	disp := make([]uint32, b.NumBuckets())
	for attempt := 1; attempt <= maxBuildAttempts; attempt++ {
		clear(disp)

		mp, err := b.Map(ctx, src, rng)
		if err != nil {
			return nil, err
		}
		if mp.Attempts() > 1 {
			log.Debug("mapping rejected seeds", "attempt", attempt, "seeds", mp.Attempts())
		}

		err = buckets.Search(ctx, buckets.Order(mp), disp)
		if errors.Is(err, buckets.ErrSearchFailed) {
			log.Debug("search failed, retrying with a new seed", "attempt", attempt, "err", err)
			continue
		}
		if err != nil {
			return nil, err
		}

		cs, err := succinct.NewCompressedSeq(disp)
		if err != nil {
			return nil, fmt.Errorf("chd: compress displacements: %w", err)
		}
		log.Debug("function built", "attempt", attempt, "seed", mp.Seed(), "code_bits", cs.TotalLength())
		return &Function{
			seed:     mp.Seed(),
			maxValue: b.N(),
			nBuckets: b.NumBuckets(),
			cs:       cs,
		}, nil
	}
	return nil, fmt.Errorf("%w: %d attempts over %d keys", chderrors.ErrConstructionExhausted, maxBuildAttempts, b.NumKeys())
}

// BuildKeys constructs a function over keys.
func BuildKeys(ctx context.Context, keys [][]byte, opts ...BuildOption) (*Function, error) {
	return Build(ctx, NewSliceKeySource(keys), opts...)
}

// Hash returns the value of key. Keys of the build set map to distinct
// values; any other key maps to some value in [0, MaxValue()).
func (f *Function) Hash(key []byte) uint32 {
	g, fv, h := buckets.Triple(f.seed, key, f.nBuckets, f.maxValue)
	return buckets.Displace(fv, h, f.cs.Query(g), f.maxValue)
}

// MaxValue returns the exclusive upper bound of Hash, the smallest odd
// prime above numKeys/loadFactor.
func (f *Function) MaxValue() uint32 { return f.maxValue }

// NumBuckets returns the number of displacement buckets.
func (f *Function) NumBuckets() uint32 { return f.nBuckets }

// Seed returns the hash seed chosen during construction.
func (f *Function) Seed() uint32 { return f.seed }

// Stats returns size statistics.
func (f *Function) Stats() Stats {
	size := f.DumpSize() * 4
	return Stats{
		MaxValue:      f.maxValue,
		NumBuckets:    f.nBuckets,
		CodeBits:      f.cs.TotalLength(),
		RemainderBits: f.cs.RemainderBits(),
		SizeBytes:     size,
		BitsPerValue:  float64(size*8) / float64(f.maxValue),
	}
}
