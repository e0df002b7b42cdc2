// Package dict provides a read-only map backed by a minimal perfect hash
// function.
//
// Each entry lives in the slot its key hashes to, so a lookup is one hash
// evaluation and one comparison. Keys outside the build set also hash to
// some slot; the stored fingerprint and key reject them.
package dict

import (
	"context"
	"fmt"
	"iter"

	"github.com/tamirms/chd"
	chderrors "github.com/tamirms/chd/errors"
	"github.com/zeebo/xxh3"
)

type slot[K comparable, V any] struct {
	fp   uint64
	used bool
	key  K
	val  V
}

// Dictionary is an immutable map from K to V. It is safe for concurrent
// reads.
type Dictionary[K comparable, V any] struct {
	fn       *chd.Function
	keyBytes func(K) []byte
	slots    []slot[K, V]
	count    int
}

// New builds a dictionary holding the entries of m. keyBytes must map
// distinct keys to distinct byte strings and return the same bytes for
// equal keys.
func New[K comparable, V any](ctx context.Context, m map[K]V, keyBytes func(K) []byte, opts ...chd.BuildOption) (*Dictionary[K, V], error) {
	keys := make([]K, 0, len(m))
	vals := make([]V, 0, len(m))
	for k, v := range m {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	return build(ctx, keys, vals, keyBytes, opts)
}

// FromSeq builds a dictionary from the pairs of seq. A key that appears
// twice fails with ErrDuplicateKeys.
func FromSeq[K comparable, V any](ctx context.Context, seq iter.Seq2[K, V], keyBytes func(K) []byte, opts ...chd.BuildOption) (*Dictionary[K, V], error) {
	var keys []K
	var vals []V
	seen := make(map[K]struct{})
	for k, v := range seq {
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: key %v appears twice", chderrors.ErrDuplicateKeys, k)
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	return build(ctx, keys, vals, keyBytes, opts)
}

func build[K comparable, V any](ctx context.Context, keys []K, vals []V, keyBytes func(K) []byte, opts []chd.BuildOption) (*Dictionary[K, V], error) {
	encoded := make([][]byte, len(keys))
	for i, k := range keys {
		encoded[i] = keyBytes(k)
	}

	fn, err := chd.BuildKeys(ctx, encoded, opts...)
	if err != nil {
		return nil, err
	}

	d := &Dictionary[K, V]{
		fn:       fn,
		keyBytes: keyBytes,
		slots:    make([]slot[K, V], fn.MaxValue()),
		count:    len(keys),
	}
	for i, b := range encoded {
		s := &d.slots[fn.Hash(b)]
		*s = slot[K, V]{fp: xxh3.Hash(b), used: true, key: keys[i], val: vals[i]}
	}
	return d, nil
}

// Get returns the value stored for k.
func (d *Dictionary[K, V]) Get(k K) (V, bool) {
	b := d.keyBytes(k)
	s := &d.slots[d.fn.Hash(b)]
	if !s.used || s.fp != xxh3.Hash(b) || s.key != k {
		var zero V
		return zero, false
	}
	return s.val, true
}

// Contains reports whether k is in the dictionary.
func (d *Dictionary[K, V]) Contains(k K) bool {
	_, ok := d.Get(k)
	return ok
}

// Len returns the number of entries.
func (d *Dictionary[K, V]) Len() int { return d.count }

// Function returns the hash function that places the entries.
func (d *Dictionary[K, V]) Function() *chd.Function { return d.fn }

// All yields every entry in slot order.
func (d *Dictionary[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range d.slots {
			s := &d.slots[i]
			if s.used && !yield(s.key, s.val) {
				return
			}
		}
	}
}

// Keys yields every key in slot order.
func (d *Dictionary[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range d.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every value in slot order.
func (d *Dictionary[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range d.All() {
			if !yield(v) {
				return
			}
		}
	}
}
