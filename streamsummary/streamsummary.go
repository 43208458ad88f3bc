// Package streamsummary implements the Stream-Summary data structure that
// realizes the Space-Saving algorithm of Metwally, Agrawal, and El Abbadi.
//
// It maintains a fixed number of counters and reports approximate frequency
// counts with a guaranteed per-item error bound: a tracked item's true
// frequency lies in [count-epsilon, count]. The structure is a doubly-linked
// list of buckets holding equal-count items, kept in strictly increasing
// count order, indexed by a key->item map (package keyindex). This gives
// O(1) minimum-lookup (for eviction), O(1) re-ranking on unit increments
// (the common case), and O(1) total-weight tracking.
//
// Use cases:
//   - Heavy hitters detection in network traffic
//   - Trending items in social media
//   - Popular products in e-commerce
//   - Frequent queries in databases
//
// Properties:
//   - Constant memory: O(m) where m is the tracked-item capacity
//   - Guaranteed error bound: epsilon is the count of the item evicted to
//     make room for the current occupant
//   - Not safe for concurrent use: no locking is done, so callers sharing a
//     Summary across goroutines must serialize access themselves
package streamsummary

import (
	"github.com/vitalvas/topk"
	"github.com/vitalvas/topk/keyindex"
)

// item is one tracked key, intrusively linked into its owning bucket's list.
type item[C topk.Count] struct {
	key    string
	eps    C
	parent *bucket[C]
	prev   *item[C]
	next   *item[C]
}

// bucket holds every item currently sharing the same exact count. Buckets
// form a doubly-linked chain in strictly increasing count order; an empty
// bucket is unlinked and discarded immediately.
type bucket[C topk.Count] struct {
	count C
	head  *item[C]
	tail  *item[C]
	prev  *bucket[C]
	next  *bucket[C]
}

const defaultCapacity = 1024

// Summary is a Stream-Summary counter over keys of type string with counts
// of type C.
type Summary[C topk.Count] struct {
	capacity int
	index    *keyindex.Index[*item[C]]
	root     *bucket[C]
	total    C
}

// New creates a Summary tracking at most capacity distinct keys. capacity
// must be >= 1; non-positive values fall back to a sane default rather than
// producing a structure that can never admit anything.
func New[C topk.Count](capacity int) *Summary[C] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Summary[C]{
		capacity: capacity,
		index:    keyindex.New[*item[C]](capacity),
	}
}

// Capacity returns the maximum number of distinct keys this Summary can
// track at once.
func (s *Summary[C]) Capacity() int { return s.capacity }

// Len returns the number of keys currently tracked.
func (s *Summary[C]) Len() int { return s.index.Len() }

// Append records one occurrence of key.
func (s *Summary[C]) Append(key string) { s.AppendN(key, 1) }

// AppendN records weight occurrences of key.
//
// Three cases, matching the Space-Saving algorithm exactly:
//
//  1. Hit: key is already tracked. Its count is incremented by weight and
//     it is re-ranked.
//  2. Miss with room: a new item is admitted directly into the bucket whose
//     count equals weight (creating that bucket if needed), rather than
//     admitting at count 1 and incrementing by weight-1. Admission walks
//     the bucket chain from the root only as far as the bucket for weight
//     (a single step for unit weight), never weight-1 separate increments.
//  3. Miss, full: the earliest-inserted item in the lowest-count bucket is
//     evicted. Its slot is reused for the new key, its epsilon is set to
//     the count it carried at eviction time (the maximum overestimation
//     now possible for the new key), and it is incremented by weight.
func (s *Summary[C]) AppendN(key string, weight C) {
	if it, ok := s.index.Get(key); ok {
		s.increment(it, weight)
		s.total += weight
		return
	}

	if s.index.Len() < s.capacity {
		it := &item[C]{key: key}
		s.appendItem(s.bucketFor(weight), it)
		s.index.Set(key, it)
		s.total += weight
		return
	}

	victim := s.root.head
	victimCount := s.root.count
	s.index.Delete(victim.key)
	victim.key = key
	victim.eps = victimCount
	s.increment(victim, weight)
	s.index.Set(key, victim)
	s.total += weight
}

// Total returns the cumulative weight observed across all Append/AppendN
// calls.
func (s *Summary[C]) Total() C { return s.total }

// Reset clears all tracked state back to empty, keeping the configured
// capacity.
func (s *Summary[C]) Reset() {
	s.index = keyindex.New[*item[C]](s.capacity)
	s.root = nil
	s.total = 0
}

// All returns every tracked entry in descending count order (ties broken
// most-recently-promoted first), ready for support-threshold filtering by
// the caller.
func (s *Summary[C]) All() []topk.Entry[C] {
	entries := make([]topk.Entry[C], 0, s.index.Len())
	for it, ok := s.top(); ok; it, ok = s.next(it) {
		entries = append(entries, topk.Entry[C]{
			Key:     it.key,
			Count:   it.parent.count,
			Epsilon: it.eps,
		})
	}
	return entries
}

// increment moves item into the bucket whose count equals its current
// bucket's count plus delta, creating that bucket if none exists yet, and
// discards the old bucket if it is left empty. When delta == 1 (the
// overwhelmingly common path) the walk below terminates in a single step,
// giving true O(1) behavior; larger deltas pay O(distance) in the bucket
// chain, bounded by the number of distinct counts currently tracked.
func (s *Summary[C]) increment(it *item[C], delta C) {
	if delta == 0 {
		return // already in the bucket for its count
	}
	old := it.parent
	newCount := old.count + delta
	s.detachItem(it)

	b := old
	for b.next != nil && b.next.count < newCount {
		b = b.next
	}

	if b.next != nil && b.next.count == newCount {
		s.appendItem(b.next, it)
	} else {
		nb := &bucket[C]{count: newCount, prev: b, next: b.next}
		if b.next != nil {
			b.next.prev = nb
		}
		b.next = nb
		s.appendItem(nb, it)
	}

	if old.head == nil {
		s.eraseBucket(old)
	}
}

// bucketFor returns the bucket with the given count, creating and splicing
// it into the chain at the right position if it does not already exist.
func (s *Summary[C]) bucketFor(count C) *bucket[C] {
	if s.root == nil {
		s.root = &bucket[C]{count: count}
		return s.root
	}

	if count < s.root.count {
		nb := &bucket[C]{count: count, next: s.root}
		s.root.prev = nb
		s.root = nb
		return nb
	}

	b := s.root
	for {
		if b.count == count {
			return b
		}
		if b.next == nil || b.next.count > count {
			nb := &bucket[C]{count: count, prev: b, next: b.next}
			if b.next != nil {
				b.next.prev = nb
			}
			b.next = nb
			return nb
		}
		b = b.next
	}
}

func (s *Summary[C]) appendItem(b *bucket[C], it *item[C]) {
	it.parent = b
	it.prev = b.tail
	it.next = nil
	if b.tail != nil {
		b.tail.next = it
	} else {
		b.head = it
	}
	b.tail = it
}

func (s *Summary[C]) detachItem(it *item[C]) {
	b := it.parent
	if b.head == it {
		b.head = it.next
	}
	if b.tail == it {
		b.tail = it.prev
	}
	if it.prev != nil {
		it.prev.next = it.next
	}
	if it.next != nil {
		it.next.prev = it.prev
	}
	it.parent = nil
	it.prev = nil
	it.next = nil
}

func (s *Summary[C]) eraseBucket(b *bucket[C]) {
	if b.prev != nil {
		b.prev.next = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	if s.root == b {
		s.root = b.next
	}
}

// top returns the item considered most frequent: the tail of the
// highest-count bucket in the chain.
func (s *Summary[C]) top() (*item[C], bool) {
	if s.root == nil {
		return nil, false
	}
	b := s.root
	for b.next != nil {
		b = b.next
	}
	return b.tail, true
}

// next returns the successor of cur in descending-count order: its own
// predecessor within the bucket, or the tail of the preceding (lower-count)
// bucket, or ok == false if cur is the last (lowest-count, earliest
// admitted) item in the chain.
func (s *Summary[C]) next(cur *item[C]) (*item[C], bool) {
	if cur.prev != nil {
		return cur.prev, true
	}
	if cur.parent.prev != nil {
		return cur.parent.prev.tail, true
	}
	return nil, false
}

var _ topk.Counter[uint32] = (*Summary[uint32])(nil)
