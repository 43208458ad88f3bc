// Package topk defines the shared contract implemented by every heavy-hitter
// counter in this module: the Stream-Summary (package streamsummary), the
// priority-queue realization (package spacesaving), and the exact baseline
// (package exactcount). The sum aggregator (package sumagg) targets any of
// them.
package topk

// Count is the set of unsigned integer widths a counter may be instantiated
// over. All counts and weights in a given instance share this type, and
// arithmetic on it wraps on overflow following Go's native unsigned
// semantics.
type Count interface {
	~uint16 | ~uint32 | ~uint64
}

// Entry is one row of a result view: a tracked key, its estimated count, and
// the maximum amount by which that estimate may overstate the key's true
// frequency. Epsilon is always 0 for exact counters.
type Entry[C Count] struct {
	Key     string
	Count   C
	Epsilon C
}

// Counter is the operation set every heavy-hitter implementation exposes.
// A driver selects one implementation at construction time and interacts
// with it only through this interface from then on.
type Counter[C Count] interface {
	// Append records one occurrence of key.
	Append(key string)

	// AppendN records weight occurrences of key.
	AppendN(key string, weight C)

	// Total returns the cumulative weight observed across all Append/AppendN
	// calls made so far.
	Total() C

	// All returns tracked entries in descending count order.
	All() []Entry[C]

	// Reset clears all state back to empty.
	Reset()
}
