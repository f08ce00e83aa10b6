// Package compact shrinks an arbitrary nested record without changing its
// logical shape: null pruning, key renaming, enum shortening and numeric
// normalization, each independently toggleable. Stages build fresh
// structures; the input record is never mutated.
package compact

import (
	"math"
	"strconv"
	"strings"

	"github.com/guttosm/tokentrim/internal/domain/models"
)

// Options toggles the individual compaction stages. A disabled stage is
// equivalent to never running it.
//
// CoerceNumericStrings is a sub-flag of OptimizeNumbers: the source
// deployment converts any numeric-looking string (including all-digit
// identifiers such as news ids), and that lossy behavior is kept as the
// default. Callers whose payloads carry identifier strings should turn it
// off.
type Options struct {
	RemoveNulls          bool
	ShortenFields        bool
	ShortenEnums         bool
	OptimizeNumbers      bool
	CoerceNumericStrings bool
}

// Compactor applies the compaction stages using one immutable table set.
// A single Compactor is safe for concurrent use.
type Compactor struct {
	tables *Tables
}

// New creates a Compactor. A nil tables argument selects DefaultTables.
func New(tables *Tables) *Compactor {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Compactor{tables: tables}
}

// Apply runs the enabled stages in their fixed order: null pruning, key
// renaming, enum shortening, numeric normalization. The input is never
// mutated; the result is always a non-nil record.
func (c *Compactor) Apply(rec *models.Record, opts Options) *models.Record {
	out := rec
	if opts.RemoveNulls {
		out = c.RemoveNulls(out)
	}
	if opts.ShortenFields {
		out = c.ShortenFields(out)
	}
	if opts.ShortenEnums {
		out = c.ShortenEnums(out)
	}
	if opts.OptimizeNumbers {
		out = c.OptimizeNumbers(out, opts.CoerceNumericStrings)
	}
	return out
}

// RemoveNulls recursively removes entries whose value is null, then removes
// any container that became empty as a result of the pruning. Containers
// that were already empty in the input are kept, and the outermost record is
// always returned (possibly empty), never replaced by nil.
func (c *Compactor) RemoveNulls(rec *models.Record) *models.Record {
	if rec == nil {
		return models.NewRecord()
	}
	pruned, _ := pruneValue(rec)
	if out, ok := pruned.(*models.Record); ok {
		return out
	}
	// The whole record pruned away; the outermost one survives as empty.
	return models.NewRecord()
}

// pruneValue returns the pruned value and whether the parent should keep it.
func pruneValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case *models.Record:
		out := models.NewRecord()
		removed := false
		t.Range(func(k string, child any) bool {
			pv, keep := pruneValue(child)
			if !keep {
				removed = true
				return true
			}
			out.Set(k, pv)
			return true
		})
		if out.Len() == 0 && removed {
			return nil, false
		}
		return out, true
	case []any:
		out := make([]any, 0, len(t))
		removed := false
		for _, item := range t {
			pv, keep := pruneValue(item)
			if !keep {
				removed = true
				continue
			}
			out = append(out, pv)
		}
		if len(out) == 0 && removed {
			return nil, false
		}
		return out, true
	default:
		return v, true
	}
}

// ShortenFields recursively replaces every mapping key via the field table.
// Unmapped keys are left unchanged; lists of scalars pass through as-is.
func (c *Compactor) ShortenFields(rec *models.Record) *models.Record {
	if rec == nil {
		return models.NewRecord()
	}
	return c.renameValue(rec).(*models.Record)
}

func (c *Compactor) renameValue(v any) any {
	switch t := v.(type) {
	case *models.Record:
		out := models.NewRecord()
		t.Range(func(k string, child any) bool {
			short, ok := c.tables.Fields[k]
			if !ok {
				short = k
			}
			out.Set(short, c.renameValue(child))
			return true
		})
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = c.renameValue(item)
		}
		return out
	default:
		return v
	}
}

// ShortenEnums replaces string leaf values via the enum table on an exact,
// case-sensitive match. Keys are never touched, and there is no substring
// or prefix matching: "EVETİ" stays "EVETİ" even though "EVET" is mapped.
func (c *Compactor) ShortenEnums(rec *models.Record) *models.Record {
	if rec == nil {
		return models.NewRecord()
	}
	return c.shortenEnumValue(rec).(*models.Record)
}

func (c *Compactor) shortenEnumValue(v any) any {
	switch t := v.(type) {
	case *models.Record:
		out := models.NewRecord()
		t.Range(func(k string, child any) bool {
			out.Set(k, c.shortenEnumValue(child))
			return true
		})
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = c.shortenEnumValue(item)
		}
		return out
	case string:
		if short, ok := c.tables.Enums[t]; ok {
			return short
		}
		return t
	default:
		return v
	}
}

// OptimizeNumbers rounds every float leaf to 2 decimal places and, when
// coerceStrings is set, converts numeric-looking string leaves to numbers.
// This stage is intentionally lossy: precision beyond 2 decimals is
// discarded and string-typed numbers change type.
func (c *Compactor) OptimizeNumbers(rec *models.Record, coerceStrings bool) *models.Record {
	if rec == nil {
		return models.NewRecord()
	}
	return normalizeValue(rec, coerceStrings).(*models.Record)
}

func normalizeValue(v any, coerceStrings bool) any {
	switch t := v.(type) {
	case *models.Record:
		out := models.NewRecord()
		t.Range(func(k string, child any) bool {
			out.Set(k, normalizeValue(child, coerceStrings))
			return true
		})
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item, coerceStrings)
		}
		return out
	case float64:
		return round2(t)
	case string:
		if !coerceStrings {
			return t
		}
		return coerceNumericString(t)
	default:
		return v
	}
}

// coerceNumericString converts a string that parses cleanly as an integer
// or float; anything else (including hex, inf and nan spellings) is left
// untouched.
func coerceNumericString(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.ContainsAny(s, "xXpP_") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	return round2(f)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
