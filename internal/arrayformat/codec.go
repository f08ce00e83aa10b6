package arrayformat

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/guttosm/tokentrim/internal/domain/models"
	"github.com/guttosm/tokentrim/internal/logger"
)

// Encode converts uniform point records into fixed-order value arrays.
//
// Behavior:
//   - Each logical field resolves through its ordered candidate synonyms.
//   - Missing numeric fields become 0, a missing date becomes nil; values
//     are never fabricated beyond that.
//   - A point whose present value cannot be coerced (e.g., non-numeric
//     price) is skipped with a warning; the rest of the batch continues.
//   - Every emitted row has exactly schema.FieldCount() slots.
func Encode(points []*models.Record, s *Schema) [][]any {
	if len(points) == 0 {
		return [][]any{}
	}
	rows := make([][]any, 0, len(points))
	for i, p := range points {
		row, err := encodePoint(p, s)
		if err != nil {
			logger.L().Warn().Int("index", i).Str("schema", string(s.Kind)).Err(err).Msg("arrayformat: skipping point")
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func encodePoint(p *models.Record, s *Schema) ([]any, error) {
	row := make([]any, 0, len(s.Fields))
	for _, f := range s.Fields {
		_, raw, ok := p.First(f.Candidates...)
		if !ok {
			// Tolerate absent fields: zero for numerics, nil for dates.
			if f.Coerce == CoerceDate {
				row = append(row, nil)
			} else if f.Coerce == CoercePrice {
				row = append(row, float64(0))
			} else {
				row = append(row, int64(0))
			}
			continue
		}
		v, err := coerce(raw, f)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		row = append(row, v)
	}
	return row, nil
}

func coerce(raw any, f FieldSpec) (any, error) {
	switch f.Coerce {
	case CoerceDate:
		return coerceDate(raw)
	case CoerceUnix:
		return coerceUnix(raw)
	case CoercePrice:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, err
		}
		return roundTo(v, f.Precision), nil
	default: // CoerceCount
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, err
		}
		return int64(v), nil
	}
}

// coerceDate canonicalizes date values to a "YYYY-MM-DD" string. String
// inputs are kept verbatim so re-encoding a decoded row is byte-stable.
func coerceDate(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case time.Time:
		return v.Format("2006-01-02"), nil
	case int, int32, int64, float64:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		return time.Unix(n, 0).UTC().Format("2006-01-02"), nil
	default:
		return nil, fmt.Errorf("unsupported date value %T", raw)
	}
}

func coerceUnix(raw any) (any, error) {
	if t, ok := raw.(time.Time); ok {
		return t.Unix(), nil
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Decode restores point records from fixed-order arrays.
//
// Parameters:
//   - rows:       arrays produced by Encode (or an upstream equivalent).
//   - fieldNames: keys to restore values under; nil selects the schema's
//     defaults.
//
// A row shorter than the schema's field count is skipped with a warning;
// elements beyond the field count are ignored. Decode never fails on a
// single bad row.
func Decode(rows [][]any, fieldNames []string, s *Schema) []*models.Record {
	if len(rows) == 0 {
		return []*models.Record{}
	}
	if fieldNames == nil {
		fieldNames = s.DefaultFieldNames
	}
	out := make([]*models.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) < len(fieldNames) {
			logger.L().Warn().Int("index", i).Int("want", len(fieldNames)).Int("got", len(row)).Msg("arrayformat: skipping short row")
			continue
		}
		rec := models.NewRecord()
		for j, name := range fieldNames {
			rec.Set(name, row[j])
		}
		out = append(out, rec)
	}
	return out
}

// KlineRows converts a columnar TradingView-style kline record
// ({t, o, h, l, c, v} parallel arrays) into row-shaped point records ready
// for Encode. It returns false when the record is not columnar or the
// arrays disagree in length.
func KlineRows(columnar *models.Record) ([]*models.Record, bool) {
	if columnar == nil {
		return nil, false
	}
	cols := make(map[string][]any, 6)
	for _, k := range []string{"t", "o", "h", "l", "c", "v"} {
		v, ok := columnar.Get(k)
		if !ok {
			return nil, false
		}
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		cols[k] = arr
	}
	n := len(cols["t"])
	for _, arr := range cols {
		if len(arr) != n {
			return nil, false
		}
	}

	rows := make([]*models.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := models.NewRecord()
		rec.Set("timestamp", cols["t"][i])
		rec.Set("open", cols["o"][i])
		rec.Set("high", cols["h"][i])
		rec.Set("low", cols["l"][i])
		rec.Set("close", cols["c"][i])
		rec.Set("volume", cols["v"][i])
		rows = append(rows, rec)
	}
	return rows, true
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
