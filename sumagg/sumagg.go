// Package sumagg implements the sum aggregator: a second-pass combiner for
// streams of pre-aggregated `(token, freq)` records, as opposed to a raw
// stream of bare keys. It parses tab-separated lines using two configurable,
// 1-based field positions and feeds the parsed (token, weight) pair to any
// counter satisfying topk.Counter[C] — typically an exactcount.Counter or a
// streamsummary.Summary.
package sumagg

import (
	"strconv"
	"strings"

	"github.com/vitalvas/topk"
)

const (
	// DefaultTokenField is the 1-based column holding the token when the
	// caller does not configure one explicitly.
	DefaultTokenField = 1
	// DefaultFreqField is the 1-based column holding the frequency when the
	// caller does not configure one explicitly.
	DefaultFreqField = 2
)

// Aggregator parses tab-separated (token, freq) records and feeds them into
// a target counter.
type Aggregator[C topk.Count] struct {
	// TokenField is the 1-based index of the token column.
	TokenField int
	// FreqField is the 1-based index of the frequency column.
	FreqField int

	target topk.Counter[C]

	records int
	skipped int
}

// New creates an Aggregator that feeds parsed records to target. Field
// indices default to DefaultTokenField/DefaultFreqField if left at zero.
func New[C topk.Count](target topk.Counter[C]) *Aggregator[C] {
	return &Aggregator[C]{
		TokenField: DefaultTokenField,
		FreqField:  DefaultFreqField,
		target:     target,
	}
}

// Records returns the number of lines successfully parsed and applied.
func (a *Aggregator[C]) Records() int { return a.records }

// Skipped returns the number of lines dropped for having an empty token or
// too few fields to reach the configured token column.
func (a *Aggregator[C]) Skipped() int { return a.skipped }

// Feed parses line and applies it to the target counter, if it carries a
// non-empty token. A record with fewer fields than TokenField requires is
// skipped outright; an unparsable or out-of-range frequency field parses as
// weight 0 rather than being rejected, a deliberate robustness choice for
// tolerating malformed pipeline input.
func (a *Aggregator[C]) Feed(line string) {
	token, weight, ok := a.Parse(line)
	if !ok {
		a.skipped++
		return
	}
	a.target.AppendN(token, weight)
	a.records++
}

// Parse splits line on tab and extracts the configured token and frequency
// fields. ok is false when the line has fewer fields than TokenField needs,
// or the token field is empty. A missing or unparsable frequency field
// yields weight 0 rather than failing the parse.
func (a *Aggregator[C]) Parse(line string) (token string, weight C, ok bool) {
	tokenField := a.TokenField
	if tokenField <= 0 {
		tokenField = DefaultTokenField
	}
	freqField := a.FreqField
	if freqField <= 0 {
		freqField = DefaultFreqField
	}

	fields := strings.Split(line, "\t")

	if tokenField > len(fields) {
		return "", 0, false
	}
	token = fields[tokenField-1]
	if token == "" {
		return "", 0, false
	}

	if freqField <= len(fields) {
		// Parsed as signed so a literal negative value reads as
		// unparsable (weight 0) rather than wrapping through a huge
		// unsigned value; a value that fits but overflows the chosen
		// count width still wraps per that type's native arithmetic.
		if n, err := strconv.ParseInt(fields[freqField-1], 10, 64); err == nil && n >= 0 {
			weight = C(n)
		}
	}

	return token, weight, true
}
