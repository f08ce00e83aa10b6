package resample

import (
	"math"

	"github.com/spf13/cast"
)

// AggFunc collapses the raw values one field took across a bucket into a
// single value. Implementations receive values in chronological order and
// must not mutate the slice. Returning nil omits the field from the bucket.
type AggFunc func(values []any) any

// First returns the chronologically first value.
func First(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// Last returns the chronologically last value.
func Last(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[len(values)-1]
}

// Max returns the numerically largest value. Non-numeric values are ignored;
// if nothing parses, the field is omitted. The original value is returned
// unchanged, so integer volumes stay integers.
func Max(values []any) any {
	best, ok := pick(values, func(candidate, current float64) bool { return candidate > current })
	if !ok {
		return nil
	}
	return best
}

// Min returns the numerically smallest value, with the same tolerance rules
// as Max.
func Min(values []any) any {
	best, ok := pick(values, func(candidate, current float64) bool { return candidate < current })
	if !ok {
		return nil
	}
	return best
}

// Sum returns the exact sum of all numeric values. The result is an int64
// when every contributing value is integral, so summed volumes serialize
// without a decimal point.
func Sum(values []any) any {
	var sum float64
	parsed := false
	integral := true
	for _, v := range values {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		parsed = true
		sum += f
		if f != math.Trunc(f) {
			integral = false
		}
	}
	if !parsed {
		return nil
	}
	if integral {
		return int64(sum)
	}
	return sum
}

func pick(values []any, better func(candidate, current float64) bool) (any, bool) {
	var best any
	var bestF float64
	found := false
	for _, v := range values {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		if !found || better(f, bestF) {
			best, bestF, found = v, f, true
		}
	}
	return best, found
}

// Rule binds one logical field, addressed through its ordered candidate key
// synonyms, to the aggregator used when collapsing a bucket.
type Rule struct {
	Candidates []string
	Agg        AggFunc
}

// RuleSet is the per-domain aggregation map applied by Resample.
//
// Fields not matched by any Rule fall back to Default; a nil Default drops
// them from the bucket output (the OHLCV behavior).
type RuleSet struct {
	Rules   []Rule
	Default AggFunc
}

// OHLCVRules aggregates price bars: open=first, high=max, low=min,
// close=last, volume=sum. Candidate names cover the Turkish, English and
// single-letter (TradingView) spellings seen upstream.
func OHLCVRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{Candidates: []string{"acilis", "open", "o"}, Agg: First},
			{Candidates: []string{"en_yuksek", "high", "h"}, Agg: Max},
			{Candidates: []string{"en_dusuk", "low", "l"}, Agg: Min},
			{Candidates: []string{"kapanis", "close", "c"}, Agg: Last},
			{Candidates: []string{"hacim", "volume", "v"}, Agg: Sum},
		},
	}
}

// FundRules aggregates NAV series: price is last-observation, volume is
// summed, and every other field (portfolio value, investor count, …) is
// last-value-wins.
func FundRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{Candidates: []string{"fiyat", "nav", "price", "kapanis"}, Agg: Last},
			{Candidates: []string{"hacim", "volume"}, Agg: Sum},
		},
		Default: Last,
	}
}
