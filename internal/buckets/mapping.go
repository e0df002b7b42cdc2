package buckets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	chderrors "github.com/tamirms/chd/errors"
)

// item is one key reduced to its base position and step.
type item struct {
	f, h uint32
}

// bucket addresses a run of items. Before Ordering, buckets are indexed by
// bucket id; after it, id records which bucket the entry came from.
type bucket struct {
	id     uint32
	offset uint32
	size   uint32
}

type mapItem struct {
	f, h, g uint32
}

// Mapping is the result of a successful mapping phase: every key assigned
// to a bucket, with no two keys in one bucket sharing (f, h).
type Mapping struct {
	b             *Buckets
	seed          uint32
	maxBucketSize uint32
	attempts      int
	buckets       []bucket
	items         []item
}

// Seed returns the hash seed the mapping was built with.
func (mp *Mapping) Seed() uint32 { return mp.seed }

// MaxBucketSize returns the size of the largest bucket.
func (mp *Mapping) MaxBucketSize() uint32 { return mp.maxBucketSize }

// Attempts returns the number of seeds tried, including the successful one.
func (mp *Mapping) Attempts() int { return mp.attempts }

// Map runs the mapping phase. Each attempt draws a seed from rng, hashes
// every key of src and groups the results by bucket. An attempt fails when
// two keys of one bucket share (f, h), which keeps them from ever being
// separated by a displacement; after 1000 failed seeds the key set is
// assumed to hold duplicates.
func (b *Buckets) Map(ctx context.Context, src KeySource, rng *rand.Rand) (*Mapping, error) {
	mapItems := make([]mapItem, b.m)
	mp := &Mapping{
		b:       b,
		buckets: make([]bucket, b.nBuckets),
		items:   make([]item, b.m),
	}

	for attempt := 1; attempt <= maxMappingAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mp.seed = rng.Uint32()
		mp.attempts = attempt

		ok, err := mp.tryMap(src, mapItems)
		if err != nil {
			return nil, err
		}
		if ok {
			return mp, nil
		}
	}
	return nil, fmt.Errorf("%w: %d seeds tried over %d keys", chderrors.ErrDuplicateKeys, maxMappingAttempts, b.m)
}

// tryMap hashes all keys with mp.seed and fills buckets and items. It
// reports false on an in-bucket (f, h) collision.
func (mp *Mapping) tryMap(src KeySource, mapItems []mapItem) (bool, error) {
	b := mp.b
	clear(mp.buckets)
	mp.maxBucketSize = 0

	src.Rewind()
	for i := range mapItems {
		key, err := src.Read()
		if errors.Is(err, io.EOF) {
			return false, fmt.Errorf("%w: got %d of %d keys", chderrors.ErrKeyCountMismatch, i, b.m)
		}
		if err != nil {
			return false, fmt.Errorf("chd: reading key %d: %w", i, err)
		}

		g, f, h := Triple(mp.seed, key, b.nBuckets, b.n)
		mapItems[i] = mapItem{f: f, h: h, g: g}
		mp.buckets[g].size++
		mp.maxBucketSize = max(mp.maxBucketSize, mp.buckets[g].size)
	}

	var offset uint32
	for i := range mp.buckets {
		mp.buckets[i].id = uint32(i)
		mp.buckets[i].offset = offset
		offset += mp.buckets[i].size
		mp.buckets[i].size = 0
	}

	for _, mi := range mapItems {
		if !mp.insert(mi) {
			return false, nil
		}
	}
	return true, nil
}

// insert appends mi to its bucket unless the bucket already holds the
// same (f, h).
func (mp *Mapping) insert(mi mapItem) bool {
	bk := &mp.buckets[mi.g]
	run := mp.items[bk.offset : bk.offset+bk.size]
	for _, it := range run {
		if it.f == mi.f && it.h == mi.h {
			return false
		}
	}
	mp.items[bk.offset+bk.size] = item{f: mi.f, h: mi.h}
	bk.size++
	return true
}
