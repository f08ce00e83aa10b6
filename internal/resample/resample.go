// Package resample shrinks long time series by collapsing points into
// calendar buckets (week, month, quarter) before serialization. It is the
// adaptive-downsampling stage of the response-size pipeline: granularity is
// chosen from the span of the series, and per-field aggregation rules decide
// how a bucket's points fold into one output point.
package resample

import (
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/guttosm/tokentrim/internal/domain/models"
	"github.com/guttosm/tokentrim/internal/logger"
)

// Granularity is the calendar bucket size used when collapsing a series.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
)

// Sampling thresholds (in days) and the token budget that triggers
// downsampling. These must stay reproducible exactly: callers and tests
// depend on the 30/180/730 boundaries.
const (
	DailyThresholdDays   = 30  // up to 30 days: keep daily points
	WeeklyThresholdDays  = 180 // 31-180 days: weekly buckets
	MonthlyThresholdDays = 730 // 181-730 days: monthly buckets; beyond: quarterly

	MaxTokensPerResponse = 8000 // conservative budget for one LLM response
	TokensPerPoint       = 50   // estimated cost of one serialized OHLC point
)

// Code returns the single-letter sampling frequency used in optimization
// metadata (D/W/M/Q).
func (g Granularity) Code() string {
	switch g {
	case Weekly:
		return "W"
	case Monthly:
		return "M"
	case Quarterly:
		return "Q"
	default:
		return "D"
	}
}

// dateCandidates is the ordered list of key synonyms a point's date field
// may hide behind, first present wins.
var dateCandidates = []string{"tarih", "date", "timestamp", "formatted_time"}

// ShouldOptimize reports whether a series needs downsampling: either its
// estimated serialized cost exceeds the budget, or it spans more calendar
// days than the daily threshold.
func ShouldOptimize(pointCount, spanDays, perPointTokens, budget int) bool {
	return pointCount*perPointTokens > budget || spanDays > DailyThresholdDays
}

// ChooseGranularity maps a span in days to a bucket size using the fixed
// thresholds above.
func ChooseGranularity(spanDays int) Granularity {
	switch {
	case spanDays <= DailyThresholdDays:
		return Daily
	case spanDays <= WeeklyThresholdDays:
		return Weekly
	case spanDays <= MonthlyThresholdDays:
		return Monthly
	default:
		return Quarterly
	}
}

// SpanDays returns the number of days between two "YYYY-MM-DD" dates.
// Unparseable input falls back to the daily threshold, which keeps the
// series un-resampled rather than guessing a long span.
func SpanDays(start, end string) int {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		logger.L().Warn().Str("start", start).Err(err).Msg("span: invalid start date")
		return DailyThresholdDays
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		logger.L().Warn().Str("end", end).Err(err).Msg("span: invalid end date")
		return DailyThresholdDays
	}
	return int(e.Sub(s).Hours() / 24)
}

// SeriesSpanDays scans a series for its earliest and latest parseable
// observation times and returns the span in whole days. The second return
// is false when no point carries a parseable date.
func SeriesSpanDays(points []*models.Record) (int, bool) {
	var min, max time.Time
	found := false
	for _, p := range points {
		_, raw, ok := p.First(dateCandidates...)
		if !ok {
			continue
		}
		at, _, err := parseObservationTime(raw)
		if err != nil {
			continue
		}
		if !found || at.Before(min) {
			min = at
		}
		if !found || at.After(max) {
			max = at
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return int(max.Sub(min).Hours() / 24), true
}

// member pairs a point with its parsed observation time.
type member struct {
	at    time.Time
	point *models.Record
}

// bucket accumulates the points of one calendar period.
type bucket struct {
	start   time.Time
	dateKey string // key the first member carried its date under
	unixTS  bool   // emit the bucket date as unix seconds, not "YYYY-MM-DD"
	members []member
}

// Resample groups points into calendar buckets of the given granularity and
// collapses each non-empty bucket into one record using the rule set.
//
// Behavior:
//   - Daily granularity is the identity: the input slice is returned as-is.
//   - A point whose date cannot be parsed is skipped with a warning.
//   - If no point carries a recognizable date field, the input is returned
//     unchanged (fail open).
//   - Output records are sorted ascending by bucket start, and each carries
//     the bucket start under the same date key (and format) the input used.
func Resample(points []*models.Record, g Granularity, rules RuleSet) []*models.Record {
	if g == Daily || len(points) == 0 {
		return points
	}

	buckets := make(map[int64]*bucket)
	sawDateKey := false

	for _, p := range points {
		key, raw, ok := p.First(dateCandidates...)
		if !ok {
			continue
		}
		sawDateKey = true

		at, unixTS, err := parseObservationTime(raw)
		if err != nil {
			logger.L().Warn().Str("key", key).Interface("value", raw).Err(err).Msg("resample: skipping point with unparseable date")
			continue
		}

		start := bucketStart(at, g)
		b, exists := buckets[start.Unix()]
		if !exists {
			b = &bucket{start: start, dateKey: key, unixTS: unixTS}
			buckets[start.Unix()] = b
		}
		b.members = append(b.members, member{at: at, point: p})
	}

	if !sawDateKey {
		logger.L().Warn().Int("points", len(points)).Msg("resample: no date field found, returning original data")
		return points
	}
	if len(buckets) == 0 {
		// every point had a date key but none parsed
		return points
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start.Before(ordered[j].start) })

	out := make([]*models.Record, 0, len(ordered))
	for _, b := range ordered {
		out = append(out, collapse(b, rules))
	}

	logger.L().Info().Int("from", len(points)).Int("to", len(out)).Str("granularity", string(g)).Msg("resampled series")
	return out
}

// collapse folds one bucket's members into a single record.
func collapse(b *bucket, rules RuleSet) *models.Record {
	sort.SliceStable(b.members, func(i, j int) bool { return b.members[i].at.Before(b.members[j].at) })

	rec := models.NewRecord()
	if b.unixTS {
		rec.Set(b.dateKey, b.start.Unix())
	} else {
		rec.Set(b.dateKey, b.start.Format("2006-01-02"))
	}

	// Every key claimed by a rule, so the default pass skips them.
	claimed := make(map[string]bool)
	for _, c := range dateCandidates {
		claimed[c] = true
	}

	for _, rule := range rules.Rules {
		var outKey string
		var values []any
		for _, m := range b.members {
			k, v, ok := m.point.First(rule.Candidates...)
			if !ok {
				continue
			}
			if outKey == "" {
				outKey = k
			}
			values = append(values, v)
		}
		for _, c := range rule.Candidates {
			claimed[c] = true
		}
		if outKey == "" {
			continue
		}
		if agg := rule.Agg(values); agg != nil {
			rec.Set(outKey, agg)
		}
	}

	if rules.Default == nil {
		return rec
	}

	// Unmatched fields fall back to the default aggregator, in the key
	// order of the earliest member that carries them.
	for _, m := range b.members {
		for _, k := range m.point.Keys() {
			if claimed[k] || rec.Has(k) {
				continue
			}
			var values []any
			for _, mm := range b.members {
				if v, ok := mm.point.Get(k); ok && v != nil {
					values = append(values, v)
				}
			}
			if agg := rules.Default(values); agg != nil {
				rec.Set(k, agg)
			}
		}
	}
	return rec
}

// parseObservationTime accepts string dates (several layouts), native
// time.Time values, and integer/float unix-second timestamps. The second
// return reports whether the source used a unix timestamp.
func parseObservationTime(raw any) (time.Time, bool, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, false, nil
	case int, int32, int64:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return time.Time{}, false, err
		}
		return time.Unix(n, 0).UTC(), true, nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), true, nil
	default:
		t, err := cast.ToTimeE(raw)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, false, nil
	}
}

// bucketStart truncates an observation time to the start of its calendar
// bucket: ISO-week Monday, first of month, or first month of quarter.
func bucketStart(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Weekly:
		daysSinceMonday := (int(t.Weekday()) + 6) % 7
		d := t.AddDate(0, 0, -daysSinceMonday)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}
