package main

import (
	"fmt"

	"github.com/vitalvas/topk"
	"github.com/vitalvas/topk/exactcount"
	"github.com/vitalvas/topk/spacesaving"
	"github.com/vitalvas/topk/streamsummary"
	"github.com/vitalvas/topk/sumagg"
)

// reportEntry is the count-width-erased view of topk.Entry[C] the driver
// prints from, widened to uint64 (a lossless upcast for every supported C).
type reportEntry struct {
	Key     string
	Count   uint64
	Epsilon uint64
}

// driver erases the chosen count width C behind closures, since Go cannot
// hide a type parameter behind a non-generic interface value without fixing
// C first. newDriver performs the one three-way switch on cfg.CountType that
// instantiates the monomorphic counter for the chosen width; everything
// downstream of that call only ever sees these closures.
type driver struct {
	feed    func(line string)
	total   func() uint64
	entries func() []reportEntry
}

func newDriver(cfg config) (*driver, error) {
	switch cfg.CountType {
	case "uint16":
		return buildDriver[uint16](cfg)
	case "uint32":
		return buildDriver[uint32](cfg)
	case "uint64":
		return buildDriver[uint64](cfg)
	default:
		return nil, fmt.Errorf("unknown count type %q", cfg.CountType)
	}
}

func newCounter[C topk.Count](cfg config) (topk.Counter[C], error) {
	switch cfg.Algorithm {
	case "exact", "sum":
		return exactcount.New[C](), nil
	case "spacesaving", "sum_spacesaving":
		switch cfg.Realization {
		case "priorityqueue":
			return spacesaving.New[C](cfg.Epsilon), nil
		case "streamsummary":
			return streamsummary.New[C](cfg.Epsilon), nil
		default:
			return nil, fmt.Errorf("unknown realization %q", cfg.Realization)
		}
	default:
		return nil, fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
	}
}

// buildDriver wires the counter for count width C into a driver: plain
// algorithms feed Append(line) directly, sum algorithms route every line
// through a sumagg.Aggregator that splits it into (token, weight) first.
func buildDriver[C topk.Count](cfg config) (*driver, error) {
	counter, err := newCounter[C](cfg)
	if err != nil {
		return nil, err
	}

	sumMode := cfg.Algorithm == "sum" || cfg.Algorithm == "sum_spacesaving"

	var feed func(line string)
	if sumMode {
		agg := sumagg.New[C](counter)
		agg.TokenField = cfg.TokenField
		agg.FreqField = cfg.FreqField
		feed = agg.Feed
	} else {
		feed = counter.Append
	}

	return &driver{
		feed:  feed,
		total: func() uint64 { return uint64(counter.Total()) },
		entries: func() []reportEntry {
			all := counter.All()
			out := make([]reportEntry, len(all))
			for i, e := range all {
				out[i] = reportEntry{Key: e.Key, Count: uint64(e.Count), Epsilon: uint64(e.Epsilon)}
			}
			return out
		},
	}, nil
}

// hasEpsilon reports whether algorithm reports a per-entry error bound,
// which governs the driver's output column count.
func hasEpsilon(algorithm string) bool {
	return algorithm == "spacesaving" || algorithm == "sum_spacesaving"
}

// supportThreshold resolves cfg's absolute/relative support flags into a
// single count cutoff: entries with Count below it are dropped from output.
// AbsoluteSupport < 0 means "unset"; it wins over Support when set.
func supportThreshold(cfg config, total uint64) uint64 {
	if cfg.AbsoluteSupport >= 0 {
		return uint64(cfg.AbsoluteSupport)
	}
	if cfg.Support <= 0 {
		return 0
	}
	threshold := cfg.Support * float64(total)
	rounded := uint64(threshold)
	if float64(rounded) < threshold {
		rounded++
	}
	return rounded
}
