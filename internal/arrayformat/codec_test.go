package arrayformat

import (
	"reflect"
	"testing"

	"github.com/guttosm/tokentrim/internal/domain/models"
)

func equityPoint(date string, open, high, low, close any, volume any) *models.Record {
	p := models.NewRecord()
	p.Set("tarih", date)
	p.Set("acilis", open)
	p.Set("en_yuksek", high)
	p.Set("en_dusuk", low)
	p.Set("kapanis", close)
	p.Set("hacim", volume)
	return p
}

func TestDetect_PriorityOrder(t *testing.T) {
	cases := []struct {
		name     string
		keys     []string
		wantKind Kind
		wantKey  string
		wantOK   bool
	}{
		{name: "equity", keys: []string{"ticker_kodu", "veri_noktalari"}, wantKind: KindEquity, wantKey: "veri_noktalari", wantOK: true},
		{name: "crypto ohlc", keys: []string{"ohlc_data"}, wantKind: KindCrypto, wantKey: "ohlc_data", wantOK: true},
		{name: "crypto klines", keys: []string{"klines"}, wantKind: KindCrypto, wantKey: "klines", wantOK: true},
		{name: "crypto kline_data", keys: []string{"kline_data"}, wantKind: KindCrypto, wantKey: "kline_data", wantOK: true},
		{name: "fund", keys: []string{"fon_kodu", "fiyat_noktalari"}, wantKind: KindFund, wantKey: "fiyat_noktalari", wantOK: true},
		{name: "equity wins over fund", keys: []string{"fiyat_noktalari", "veri_noktalari"}, wantKind: KindEquity, wantKey: "veri_noktalari", wantOK: true},
		{name: "no discriminator", keys: []string{"ticker_kodu", "sonuclar"}, wantOK: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := models.NewRecord()
			for _, k := range c.keys {
				env.Set(k, []any{})
			}
			s, key, ok := Detect(env)
			if ok != c.wantOK {
				t.Fatalf("ok: want %v got %v", c.wantOK, ok)
			}
			if !ok {
				return
			}
			if s.Kind != c.wantKind || key != c.wantKey {
				t.Fatalf("want (%v,%q) got (%v,%q)", c.wantKind, c.wantKey, s.Kind, key)
			}
		})
	}
}

func TestEncode_Equity(t *testing.T) {
	points := []*models.Record{
		equityPoint("2024-01-02", 10.123, 11.567, 9.891, 10.999, int64(1500)),
	}
	rows := Encode(points, SchemaByKind(KindEquity))
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	want := []any{"2024-01-02", 10.12, 11.57, 9.89, 11.0, int64(1500)}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("row: want %v got %v", want, rows[0])
	}
}

func TestEncode_EnglishSynonymsAndStrings(t *testing.T) {
	p := models.NewRecord()
	p.Set("date", "2024-03-01")
	p.Set("open", "10.5") // string prices are coerced
	p.Set("high", 11.0)
	p.Set("low", 10.0)
	p.Set("close", 10.75)
	p.Set("volume", "2000")
	rows := Encode([]*models.Record{p}, SchemaByKind(KindEquity))
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	want := []any{"2024-03-01", 10.5, 11.0, 10.0, 10.75, int64(2000)}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("row: want %v got %v", want, rows[0])
	}
}

func TestEncode_SkipsBadPoint(t *testing.T) {
	good := equityPoint("2024-01-02", 10.0, 11.0, 9.0, 10.5, int64(100))
	bad := equityPoint("2024-01-03", "not-a-price", 11.0, 9.0, 10.5, int64(100))
	rows := Encode([]*models.Record{good, bad}, SchemaByKind(KindEquity))
	if len(rows) != 1 {
		t.Fatalf("bad point not skipped: got %d rows", len(rows))
	}
}

func TestEncode_MissingFieldsBecomeZero(t *testing.T) {
	p := models.NewRecord()
	p.Set("tarih", "2024-01-02")
	p.Set("kapanis", 10.5)
	rows := Encode([]*models.Record{p}, SchemaByKind(KindEquity))
	want := []any{"2024-01-02", float64(0), float64(0), float64(0), 10.5, int64(0)}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("row: want %v got %v", want, rows[0])
	}
}

func TestEncode_CryptoPrecision(t *testing.T) {
	p := models.NewRecord()
	p.Set("timestamp", int64(1700000000))
	p.Set("open", 0.12345678)
	p.Set("high", 0.12345678)
	p.Set("low", 0.12345678)
	p.Set("close", 0.12345678)
	p.Set("volume", 1234.9)
	rows := Encode([]*models.Record{p}, SchemaByKind(KindCrypto))
	want := []any{int64(1700000000), 0.123457, 0.123457, 0.123457, 0.123457, int64(1234)}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("row: want %v got %v", want, rows[0])
	}
}

func TestEncode_FundPrecision(t *testing.T) {
	p := models.NewRecord()
	p.Set("tarih", "2024-01-02")
	p.Set("fiyat", 1.234567)
	p.Set("portfoy_degeri", 1234567.89)
	p.Set("tedavuldeki_pay", int64(500000))
	p.Set("yatirimci_sayisi", int64(321))
	rows := Encode([]*models.Record{p}, SchemaByKind(KindFund))
	want := []any{"2024-01-02", 1.2346, int64(1234567), int64(500000), int64(321)}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("row: want %v got %v", want, rows[0])
	}
}

func TestDecode_DefaultsAndShortRows(t *testing.T) {
	rows := [][]any{
		{"2024-01-02", 10.12, 11.57, 9.89, 11.0, int64(1500)},
		{"2024-01-03", 10.0}, // short, skipped
	}
	points := Decode(rows, nil, SchemaByKind(KindEquity))
	if len(points) != 1 {
		t.Fatalf("want 1 point, got %d", len(points))
	}
	wantKeys := []string{"tarih", "acilis", "en_yuksek", "en_dusuk", "kapanis", "hacim"}
	if !reflect.DeepEqual(points[0].Keys(), wantKeys) {
		t.Fatalf("keys: want %v got %v", wantKeys, points[0].Keys())
	}
	if v, _ := points[0].Get("hacim"); v != int64(1500) {
		t.Fatalf("hacim: got %v", v)
	}
}

func TestRoundTrip_EncodeDecodeEncode(t *testing.T) {
	points := []*models.Record{
		equityPoint("2024-01-02", 10.123, 11.567, 9.891, 10.999, int64(1500)),
		equityPoint("2024-01-03", 11.0, 12.25, 10.5, 12.0, int64(900)),
	}
	s := SchemaByKind(KindEquity)

	first := Encode(points, s)
	decoded := Decode(first, nil, s)
	second := Encode(decoded, s)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-encoding a decoded batch changed rows:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestKlineRows(t *testing.T) {
	columnar := models.NewRecord()
	columnar.Set("t", []any{int64(1700000000), int64(1700086400)})
	columnar.Set("o", []any{1.0, 2.0})
	columnar.Set("h", []any{1.5, 2.5})
	columnar.Set("l", []any{0.5, 1.5})
	columnar.Set("c", []any{1.2, 2.2})
	columnar.Set("v", []any{int64(10), int64(20)})

	rows, ok := KlineRows(columnar)
	if !ok || len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d (ok=%v)", len(rows), ok)
	}
	if v, _ := rows[1].Get("close"); v != 2.2 {
		t.Fatalf("close: got %v", v)
	}

	// Length mismatch rejects the whole conversion.
	columnar.Set("v", []any{int64(10)})
	if _, ok := KlineRows(columnar); ok {
		t.Fatalf("mismatched columns accepted")
	}

	// Missing column rejects as well.
	partial := models.NewRecord()
	partial.Set("t", []any{int64(1)})
	if _, ok := KlineRows(partial); ok {
		t.Fatalf("partial columnar record accepted")
	}
}
