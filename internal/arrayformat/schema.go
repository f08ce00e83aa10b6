// Package arrayformat converts uniform point records to and from
// fixed-order value arrays. Dropping the repeated field names is the single
// biggest size win for long series, at the cost of requiring a fixed,
// documented schema per domain.
package arrayformat

import (
	"github.com/guttosm/tokentrim/internal/domain/models"
)

// Kind identifies one of the closed set of point schemas.
type Kind string

const (
	KindEquity Kind = "equity_ohlcv"
	KindCrypto Kind = "crypto_ohlcv"
	KindFund   Kind = "fund_performance"
)

// Coercion is how a logical field's raw value is canonicalized into its
// array slot.
type Coercion int

const (
	CoerceDate  Coercion = iota // "YYYY-MM-DD" string (unix inputs converted)
	CoerceUnix                  // integer unix seconds
	CoercePrice                 // float rounded to the field's precision
	CoerceCount                 // integer (volumes, share counts, investors)
)

// FieldSpec describes one slot of an array schema.
//
// Fields:
//   - Name: canonical logical name, used in logs.
//   - Candidates: ordered key synonyms resolved against each point,
//     first present wins.
//   - Coerce: canonicalization applied to the resolved value.
//   - Precision: decimal places kept for CoercePrice fields.
type FieldSpec struct {
	Name       string
	Candidates []string
	Coerce     Coercion
	Precision  int
}

// Schema is one tagged variant of the closed schema set: which envelope
// keys discriminate it, the exact array slot order, and the default field
// names Decode restores when the caller supplies none.
type Schema struct {
	Kind              Kind
	SeriesKeys        []string
	Fields            []FieldSpec
	DefaultFieldNames []string
}

// FieldCount returns the exact number of slots every row of this schema has.
func (s *Schema) FieldCount() int { return len(s.Fields) }

// schemas holds the closed variant set in detection priority order.
// Built once at init, never mutated, safe to share across requests.
var schemas = []*Schema{
	{
		Kind:       KindEquity,
		SeriesKeys: []string{"veri_noktalari"},
		Fields: []FieldSpec{
			{Name: "date", Candidates: []string{"tarih", "date", "timestamp", "formatted_time"}, Coerce: CoerceDate},
			{Name: "open", Candidates: []string{"acilis", "open"}, Coerce: CoercePrice, Precision: 2},
			{Name: "high", Candidates: []string{"en_yuksek", "high"}, Coerce: CoercePrice, Precision: 2},
			{Name: "low", Candidates: []string{"en_dusuk", "low"}, Coerce: CoercePrice, Precision: 2},
			{Name: "close", Candidates: []string{"kapanis", "close"}, Coerce: CoercePrice, Precision: 2},
			{Name: "volume", Candidates: []string{"hacim", "volume"}, Coerce: CoerceCount},
		},
		DefaultFieldNames: []string{"tarih", "acilis", "en_yuksek", "en_dusuk", "kapanis", "hacim"},
	},
	{
		Kind:       KindCrypto,
		SeriesKeys: []string{"ohlc_data", "klines", "kline_data"},
		Fields: []FieldSpec{
			{Name: "timestamp", Candidates: []string{"timestamp", "time", "t"}, Coerce: CoerceUnix},
			{Name: "open", Candidates: []string{"open", "o"}, Coerce: CoercePrice, Precision: 6},
			{Name: "high", Candidates: []string{"high", "h"}, Coerce: CoercePrice, Precision: 6},
			{Name: "low", Candidates: []string{"low", "l"}, Coerce: CoercePrice, Precision: 6},
			{Name: "close", Candidates: []string{"close", "c"}, Coerce: CoercePrice, Precision: 6},
			{Name: "volume", Candidates: []string{"volume", "v"}, Coerce: CoerceCount},
		},
		DefaultFieldNames: []string{"timestamp", "open", "high", "low", "close", "volume"},
	},
	{
		Kind:       KindFund,
		SeriesKeys: []string{"fiyat_noktalari"},
		Fields: []FieldSpec{
			{Name: "date", Candidates: []string{"tarih", "date", "timestamp"}, Coerce: CoerceDate},
			{Name: "price", Candidates: []string{"fiyat", "price", "nav"}, Coerce: CoercePrice, Precision: 4},
			{Name: "portfolio_value", Candidates: []string{"portfoy_degeri", "portfolio_value"}, Coerce: CoerceCount},
			{Name: "shares", Candidates: []string{"tedavuldeki_pay", "tedavuldeki_pay_sayisi", "shares"}, Coerce: CoerceCount},
			{Name: "investors", Candidates: []string{"yatirimci_sayisi", "investors"}, Coerce: CoerceCount},
		},
		DefaultFieldNames: []string{"tarih", "fiyat", "portfoy_degeri", "tedavuldeki_pay", "yatirimci_sayisi"},
	},
}

// SchemaByKind returns the schema for a kind, or nil.
func SchemaByKind(k Kind) *Schema {
	for _, s := range schemas {
		if s.Kind == k {
			return s
		}
	}
	return nil
}

// Detect inspects an envelope's discriminator keys and returns the matching
// schema plus the series key that matched. Variants are checked in fixed
// priority order (equity, crypto, fund); an envelope matching none passes
// through array encoding untouched.
func Detect(env *models.Record) (*Schema, string, bool) {
	if env == nil {
		return nil, "", false
	}
	for _, s := range schemas {
		for _, key := range s.SeriesKeys {
			if env.Has(key) {
				return s, key, true
			}
		}
	}
	return nil, "", false
}
