// Package spacesaving implements the priority-queue realization of the
// Space-Saving algorithm: an alternative to package streamsummary that trades
// its O(1) updates for O(log m) ones in exchange for a simpler, array-backed
// min-heap instead of a bucket chain. It tracks the same Entry[C]
// (Key, Count, Epsilon) contract so a caller can swap realizations without
// touching anything but construction.
//
// Use cases:
//   - Heavy hitters detection in network traffic
//   - Trending items in social media
//   - Popular products in e-commerce
//   - Frequent queries in databases
//
// Properties:
//   - Constant memory: O(m) where m is the tracked-item capacity
//   - Guaranteed error bound: count is overestimated by at most the count of
//     the item evicted to make room for it
//   - Not safe for concurrent use: no locking is done, so callers sharing a
//     Tracker across goroutines must serialize access themselves
package spacesaving

import (
	"sort"

	"github.com/vitalvas/topk"
	"github.com/vitalvas/topk/keyindex"
)

// node is one heap slot: a tracked key, its exact count, its error bound,
// and a logical touch sequence used to break ties among equal counts.
type node[C topk.Count] struct {
	key   string
	count C
	eps   C
	seq   uint64
}

const defaultCapacity = 1024

// Tracker is the priority-queue realization of Space-Saving over keys of
// type string with counts of type C.
type Tracker[C topk.Count] struct {
	capacity int
	nodes    []node[C]
	index    *keyindex.Index[int] // key -> position in nodes
	total    C
	clock    uint64
}

// New creates a Tracker holding at most capacity distinct keys. capacity
// must be >= 1; non-positive values fall back to a default.
func New[C topk.Count](capacity int) *Tracker[C] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Tracker[C]{
		capacity: capacity,
		nodes:    make([]node[C], 0, capacity),
		index:    keyindex.New[int](capacity),
	}
}

// Capacity returns the maximum number of distinct keys this Tracker can
// track at once.
func (t *Tracker[C]) Capacity() int { return t.capacity }

// Len returns the number of keys currently tracked.
func (t *Tracker[C]) Len() int { return len(t.nodes) }

// Total returns the cumulative weight observed across all Append/AppendN
// calls.
func (t *Tracker[C]) Total() C { return t.total }

// Append records one occurrence of key.
func (t *Tracker[C]) Append(key string) { t.AppendN(key, 1) }

// AppendN records weight occurrences of key.
//
//  1. Hit: add weight to the tracked node and re-heapify around it.
//  2. Miss with room: push a new node at count=weight, eps=0, sift up.
//  3. Miss, full: overwrite the root (minimum) with the new key, its
//     eps set to the evicted node's count, its count set to
//     evicted_count+weight, then sift down.
//
// Ties at the root are broken by seq, a logical clock bumped on every touch
// (creation or increment): the least-recently-touched of equal-count nodes
// sorts first, so it is the one evicted. A logical counter is used instead
// of wall-clock time so eviction order is deterministic and reproducible in
// tests.
func (t *Tracker[C]) AppendN(key string, weight C) {
	t.clock++

	if i, ok := t.index.Get(key); ok {
		t.nodes[i].count += weight
		t.nodes[i].seq = t.clock
		t.fix(i)
		t.total += weight
		return
	}

	if len(t.nodes) < t.capacity {
		i := len(t.nodes)
		t.nodes = append(t.nodes, node[C]{key: key, count: weight, seq: t.clock})
		t.index.Set(key, i)
		t.up(i)
		t.total += weight
		return
	}

	victim := t.nodes[0]
	t.index.Delete(victim.key)
	t.nodes[0] = node[C]{key: key, count: victim.count + weight, eps: victim.count, seq: t.clock}
	t.index.Set(key, 0)
	t.down(0)
	t.total += weight
}

// Reset clears all tracked state back to empty, keeping the configured
// capacity.
func (t *Tracker[C]) Reset() {
	t.nodes = make([]node[C], 0, t.capacity)
	t.index = keyindex.New[int](t.capacity)
	t.total = 0
	t.clock = 0
}

// All returns every tracked entry in descending count order.
func (t *Tracker[C]) All() []topk.Entry[C] {
	entries := make([]topk.Entry[C], len(t.nodes))
	for i, n := range t.nodes {
		entries[i] = topk.Entry[C]{Key: n.key, Count: n.count, Epsilon: n.eps}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return entries
}

// less reports whether node i sorts before node j in the min-heap: smaller
// count first, ties broken by the least-recently-touched (smaller seq).
func (t *Tracker[C]) less(i, j int) bool {
	if t.nodes[i].count != t.nodes[j].count {
		return t.nodes[i].count < t.nodes[j].count
	}
	return t.nodes[i].seq < t.nodes[j].seq
}

func (t *Tracker[C]) swap(i, j int) {
	t.nodes[i], t.nodes[j] = t.nodes[j], t.nodes[i]
	t.index.Set(t.nodes[i].key, i)
	t.index.Set(t.nodes[j].key, j)
}

func (t *Tracker[C]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !t.less(i, parent) {
			break
		}
		t.swap(parent, i)
		i = parent
	}
}

func (t *Tracker[C]) down(i int) bool {
	i0 := i
	n := len(t.nodes)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		j := left
		if right := left + 1; right < n && t.less(right, left) {
			j = right
		}
		if !t.less(j, i) {
			break
		}
		t.swap(i, j)
		i = j
	}
	return i > i0
}

func (t *Tracker[C]) fix(i int) {
	if !t.down(i) {
		t.up(i)
	}
}

var _ topk.Counter[uint32] = (*Tracker[uint32])(nil)
