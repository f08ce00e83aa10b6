package compact

// Tables are the static lookup tables used by key renaming and enum
// shortening. They are total on the known key/value set and identity
// elsewhere: an unknown key or value always passes through unchanged.
//
// Tables are built once at process start and never mutated afterwards, so a
// single instance is safe to share across concurrent requests without
// locking.
type Tables struct {
	Fields map[string]string // long field name → short field name
	Enums  map[string]string // enum literal → short literal (exact match)
}

// DefaultTables returns the deployment's standard field and enum tables.
func DefaultTables() *Tables {
	return &Tables{
		Fields: map[string]string{
			// Common fields
			"ticker_kodu":   "ticker",
			"sirket_adi":    "name",
			"error_message": "error",
			"sonuc_sayisi":  "count",
			"sonuclar":      "results",
			"toplam_haber":  "total",
			"kaynak_url":    "source",
			"arama_terimi":  "search_term",

			// Financial data
			"zaman_araligi":  "period",
			"veri_noktalari": "data_points",
			"acilis":         "open",
			"kapanis":        "close",
			"en_yuksek":      "high",
			"en_dusuk":       "low",
			"hacim":          "volume",
			"tarih":          "date",

			// Company info
			"longBusinessSummary": "biz_summary",
			"fullTimeEmployees":   "employees",
			"marketCap":           "market_cap",
			"fiftyTwoWeekLow":     "low_52w",
			"fiftyTwoWeekHigh":    "high_52w",

			// Participation finance
			"uygun_olmayan_faaliyet":          "non_comp_act",
			"uygun_olmayan_imtiyaz":           "non_comp_priv",
			"destekleme_eylemi":               "support_act",
			"dogrudan_uygun_olmayan_faaliyet": "direct_non_comp",
			"uygun_olmayan_gelir_orani":       "non_comp_inc",
			"uygun_olmayan_varlik_orani":      "non_comp_asset",
			"uygun_olmayan_borc_orani":        "non_comp_debt",

			// Index data
			"endeks_kodu":   "index_code",
			"endeks_adi":    "index_name",
			"sirket_sayisi": "company_count",
			"sirketler":     "companies",

			// Fund data
			"fon_kodu":               "fund_code",
			"fon_adi":                "fund_name",
			"fon_turu":               "fund_type",
			"kurulus":                "establishment",
			"yonetici":               "manager",
			"risk_degeri":            "risk_level",
			"fiyat":                  "price",
			"tedavuldeki_pay_sayisi": "shares_outstanding",
			"toplam_deger":           "total_value",
			"yatirimci_sayisi":       "investor_count",

			// News data
			"kap_haberleri": "news",
			"baslik":        "title",
			"haber_id":      "news_id",
			"title_attr":    "title_full",

			// Crypto data
			"trading_pairs":    "pairs",
			"currencies":       "curr",
			"symbol":           "sym",
			"quote_currency":   "quote",
			"base_currency":    "base",
			"guncel_fiyat":     "current_price",
			"degisim_yuzdesi":  "change_pct",
			"degisim_miktari":  "change_amt",
			"pair_symbol":      "pair",
			"ohlc_data":        "ohlc",
			"kline_data":       "kline",
			"klines":           "klines",
			"resolution":       "res",
			"total_periods":    "periods",
			"total_candles":    "candles",
			"from_timestamp":   "from",
			"to_timestamp":     "to",
			"from_time":        "from",
			"to_time":          "to",
			"toplam_veri":      "total",
			"toplam_islem":     "total",

			// Fund price history
			"fiyat_noktalari":      "prices",
			"performans_noktalari": "perf",
			"baslangic_tarihi":     "start",
			"bitis_tarihi":         "end",
			"toplam_getiri":        "total_return",
			"yillik_getiri":        "annual_return",
			"en_yuksek_fiyat":      "max_price",
			"en_dusuk_fiyat":       "min_price",
			"volatilite":           "volatility",
			"veri_nokta_sayisi":    "data_count",
			"kaynak":               "source",
		},
		Enums: map[string]string{
			"EVET":             "Y",
			"HAYIR":            "N",
			"Consolidated":     "C",
			"Non-consolidated": "N",
			"quarterly":        "Q",
			"annual":           "A",
			"P1D":              "1D",
			"P5D":              "5D",
			"P1MO":             "1M",
			"P3MO":             "3M",
			"P6MO":             "6M",
			"P1Y":              "1Y",
			"P2Y":              "2Y",
			"P5Y":              "5Y",
			"P10Y":             "10Y",
			"PMAX":             "MAX",
		},
	}
}
