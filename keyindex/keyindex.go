// Package keyindex implements the Key-index component shared by every
// counter in this module: an open-addressing hash table specialized for
// string keys, built on xxhash instead of Go's built-in map so the
// key-to-handle lookup has an identity (and a test suite) of its own.
package keyindex

import "github.com/cespare/xxhash/v2"

type state uint8

const (
	empty state = iota
	occupied
	tombstone
)

type slot[V any] struct {
	key   string
	value V
	state state
}

// Index is a generic, open-addressing string->V hash table using linear
// probing and tombstone deletion. Zero value is not usable; construct with
// New.
type Index[V any] struct {
	slots      []slot[V]
	count      int
	tombstones int
}

const minCapacity = 8

// New returns an Index pre-sized to comfortably hold sizeHint entries
// without growing.
func New[V any](sizeHint int) *Index[V] {
	capacity := minCapacity
	for capacity < sizeHint*2 {
		capacity *= 2
	}
	return &Index[V]{slots: make([]slot[V], capacity)}
}

// Len reports the number of keys currently stored.
func (ix *Index[V]) Len() int { return ix.count }

// find walks the probe sequence for key, returning the slot holding key
// (ok == true) or the first reusable slot on that path (ok == false): an
// empty slot, or the earliest tombstone seen if no empty slot is reached
// first.
func (ix *Index[V]) find(key string) (idx int, ok bool) {
	mask := uint64(len(ix.slots) - 1)
	i := xxhash.Sum64String(key) & mask
	firstTombstone := -1

	for {
		s := &ix.slots[i]
		switch s.state {
		case empty:
			if firstTombstone >= 0 {
				return firstTombstone, false
			}
			return int(i), false
		case tombstone:
			if firstTombstone < 0 {
				firstTombstone = int(i)
			}
		case occupied:
			if s.key == key {
				return int(i), true
			}
		}
		i = (i + 1) & mask
	}
}

// Get returns the value stored for key, if any.
func (ix *Index[V]) Get(key string) (V, bool) {
	idx, ok := ix.find(key)
	if !ok {
		var zero V
		return zero, false
	}
	return ix.slots[idx].value, true
}

// Set stores value under key, inserting or overwriting as needed.
func (ix *Index[V]) Set(key string, value V) {
	if (ix.count+ix.tombstones+1)*4 >= len(ix.slots)*3 {
		ix.rehash(ix.count*2 + minCapacity)
	}

	idx, ok := ix.find(key)
	if !ok {
		if ix.slots[idx].state == tombstone {
			ix.tombstones--
		}
		ix.count++
	}
	ix.slots[idx] = slot[V]{key: key, value: value, state: occupied}
}

// Delete removes key, if present. Deleted slots are marked with a
// tombstone so later probes for other keys keep working; accumulated
// tombstones are compacted away on the next rehash.
func (ix *Index[V]) Delete(key string) {
	idx, ok := ix.find(key)
	if !ok {
		return
	}
	ix.slots[idx] = slot[V]{state: tombstone}
	ix.count--
	ix.tombstones++
}

// rehash rebuilds the table at a capacity large enough for sizeHint live
// entries, discarding tombstones in the process.
func (ix *Index[V]) rehash(sizeHint int) {
	capacity := minCapacity
	for capacity < sizeHint {
		capacity *= 2
	}

	old := ix.slots
	ix.slots = make([]slot[V], capacity)
	ix.count, ix.tombstones = 0, 0

	for _, s := range old {
		if s.state == occupied {
			ix.Set(s.key, s.value)
		}
	}
}

// Each calls fn once per stored key/value pair, in unspecified order.
func (ix *Index[V]) Each(fn func(key string, value V)) {
	for _, s := range ix.slots {
		if s.state == occupied {
			fn(s.key, s.value)
		}
	}
}
