package buckets

import (
	"context"
	"fmt"

	"github.com/tamirms/chd/internal/bits"
)

// ctxCheckInterval is the number of probe rounds between context checks.
const ctxCheckInterval = 1024

// Search runs the searching phase over o and writes the displacement of
// every non-empty bucket into disp, which is indexed by bucket id and must
// hold NumBuckets() entries. Entries of empty buckets are left untouched.
//
// Size classes are placed from the largest down. Within a class, every
// pending bucket is tried at the current (probe0, probe1); a bucket whose
// items all land on free positions claims them, otherwise its partial
// placement is rolled back and it waits for the next round. probe0 counts
// up to n and then carries into probe1.
//
// ErrSearchFailed is returned when a class is still pending after
// MaxProbes() rounds or when probe1 reaches n. o must not be reused.
func Search(ctx context.Context, o *Ordering, disp []uint32) error {
	n := o.b.n
	maxProbes := o.b.MaxProbes()
	occupied := make([]uint32, bits.Words(uint64(n)))

	for size := o.maxBucketSize; size > 0; size-- {
		class := o.Classes[size]
		pending := o.buckets[class.Offset : class.Offset+class.Count]

		var probe0, probe1, rounds uint32
		for len(pending) > 0 {
			if rounds%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			kept := 0
			for _, bk := range pending {
				if o.place(bk, size, probe0, probe1, occupied) {
					disp[bk.id] = probe0 + probe1*n
				} else {
					pending[kept] = bk
					kept++
				}
			}
			pending = pending[:kept]
			if len(pending) == 0 {
				break
			}

			probe0++
			if probe0 >= n {
				probe0 = 0
				probe1++
			}
			rounds++
			if rounds >= maxProbes || probe1 >= n {
				return fmt.Errorf("%w: %d buckets of size %d left after %d rounds",
					ErrSearchFailed, len(pending), size, rounds)
			}
		}
	}
	return nil
}

// place tries to claim a position for every item of bk. On collision it
// releases what it claimed and reports false.
func (o *Ordering) place(bk bucket, size, probe0, probe1 uint32, occupied []uint32) bool {
	n := o.b.n
	items := o.items[bk.offset : bk.offset+size]
	for i, it := range items {
		pos := Position(it.f, it.h, probe0, probe1, n)
		if bits.GetBit(occupied, pos) {
			for _, prev := range items[:i] {
				bits.UnsetBit(occupied, Position(prev.f, prev.h, probe0, probe1, n))
			}
			return false
		}
		bits.SetBit(occupied, pos)
	}
	return true
}
