// Package exactcount implements the exact baseline counter: an unordered
// key->count mapping plus a running total, with no error bound (epsilon is
// always 0). It exists to validate the Space-Saving approximations against
// ground truth and to serve plain `exact` mode in the driver.
package exactcount

import (
	"sort"

	"github.com/vitalvas/topk"
	"github.com/vitalvas/topk/keyindex"
)

const defaultSizeHint = 64

// Counter is an exact key->count mapping with a running total.
type Counter[C topk.Count] struct {
	index *keyindex.Index[C]
	order []string // admission order, for deterministic iteration in tests
	total C
}

// New creates an empty exact Counter.
func New[C topk.Count]() *Counter[C] {
	return &Counter[C]{index: keyindex.New[C](defaultSizeHint)}
}

// Append records one occurrence of key.
func (c *Counter[C]) Append(key string) { c.AppendN(key, 1) }

// AppendN records weight occurrences of key, inserting it with value weight
// if it has not been seen before.
func (c *Counter[C]) AppendN(key string, weight C) {
	if v, ok := c.index.Get(key); ok {
		c.index.Set(key, v+weight)
	} else {
		c.index.Set(key, weight)
		c.order = append(c.order, key)
	}
	c.total += weight
}

// Total returns the cumulative weight observed across all Append/AppendN
// calls.
func (c *Counter[C]) Total() C { return c.total }

// Len returns the number of distinct keys tracked.
func (c *Counter[C]) Len() int { return c.index.Len() }

// Reset clears all tracked state back to empty.
func (c *Counter[C]) Reset() {
	c.index = keyindex.New[C](defaultSizeHint)
	c.order = nil
	c.total = 0
}

// All returns every tracked entry sorted by count descending, ties broken
// by admission order for a deterministic, testable result. Enumeration
// order is unspecified by the algorithm itself (a bare map would not sort
// at all); this implementation's sort is a convenience, not a guarantee the
// Space-Saving counters are held to.
func (c *Counter[C]) All() []topk.Entry[C] {
	entries := make([]topk.Entry[C], 0, len(c.order))
	for _, key := range c.order {
		count, ok := c.index.Get(key)
		if !ok {
			continue
		}
		entries = append(entries, topk.Entry[C]{Key: key, Count: count})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return entries
}

var _ topk.Counter[uint32] = (*Counter[uint32])(nil)
