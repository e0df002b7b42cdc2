package buckets

// SizeClass locates the buckets of one size inside the size-ordered bucket
// array.
type SizeClass struct {
	Offset uint32
	Count  uint32
}

// Ordering is the mapping rearranged by bucket size: buckets of equal size
// are contiguous, in ascending bucket id, and each bucket's items follow the
// same order.
type Ordering struct {
	b             *Buckets
	maxBucketSize uint32

	// Classes is indexed by bucket size, 1 through the largest size.
	Classes []SizeClass

	buckets []bucket
	items   []item
}

// MaxBucketSize returns the size of the largest bucket.
func (o *Ordering) MaxBucketSize() uint32 { return o.maxBucketSize }

// Order sorts the buckets of mp by size with a counting sort. Empty buckets
// are dropped. mp must not be used afterwards.
func Order(mp *Mapping) *Ordering {
	o := &Ordering{
		b:             mp.b,
		maxBucketSize: mp.maxBucketSize,
		Classes:       make([]SizeClass, mp.maxBucketSize+1),
	}

	var nonEmpty uint32
	for _, bk := range mp.buckets {
		if bk.size > 0 {
			o.Classes[bk.size].Count++
			nonEmpty++
		}
	}

	var offset uint32
	for size := uint32(1); size <= o.maxBucketSize; size++ {
		o.Classes[size].Offset = offset
		offset += o.Classes[size].Count
	}

	o.buckets = make([]bucket, nonEmpty)
	next := make([]uint32, len(o.Classes))
	for size := range o.Classes {
		next[size] = o.Classes[size].Offset
	}
	for _, bk := range mp.buckets {
		if bk.size == 0 {
			continue
		}
		o.buckets[next[bk.size]] = bk
		next[bk.size]++
	}

	o.items = make([]item, len(mp.items))
	var pos uint32
	for i := range o.buckets {
		bk := &o.buckets[i]
		copy(o.items[pos:], mp.items[bk.offset:bk.offset+bk.size])
		bk.offset = pos
		pos += bk.size
	}
	return o
}
