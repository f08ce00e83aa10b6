// Package pipeline sequences the response-size optimizations under one
// configuration object: adaptive resampling, array encoding, then the
// compaction stages, in that fixed order. The orchestrator never lets an
// error or panic escape to the caller; the worst visible outcome of any
// failure is output that equals the input.
package pipeline

import (
	"math"

	"github.com/google/uuid"

	"github.com/guttosm/tokentrim/config"
	"github.com/guttosm/tokentrim/internal/arrayformat"
	"github.com/guttosm/tokentrim/internal/compact"
	"github.com/guttosm/tokentrim/internal/domain/models"
	"github.com/guttosm/tokentrim/internal/logger"
	"github.com/guttosm/tokentrim/internal/resample"
)

// Format selects the caller-facing output shape.
type Format string

const (
	FormatFull    Format = "full"    // no compaction stages
	FormatCompact Format = "compact" // all four compaction stages enabled
)

// Options are the only two knobs exposed to callers (an API layer maps its
// query parameters onto these). The five internal stage flags are derived
// from them.
type Options struct {
	Format      Format
	ArrayFormat bool
}

// flags expands Options into the internal stage toggles. FormatCompact is
// sugar for enabling every compaction stage; ArrayFormat is orthogonal and
// may be combined with FormatFull to get array shape without renaming.
func (o Options) flags(coerceStrings bool) compact.Options {
	f := compact.Options{CoerceNumericStrings: coerceStrings}
	if o.Format == FormatCompact {
		f.RemoveNulls = true
		f.ShortenFields = true
		f.ShortenEnums = true
		f.OptimizeNumbers = true
	}
	return f
}

// Orchestrator is the single entry point of the optimization pipeline.
// It holds only immutable state (tables, limits) and is safe to share
// across concurrent request handlers.
type Orchestrator struct {
	compactor     *compact.Compactor
	limits        config.LimitsConfig
	coerceStrings bool
}

// New creates an Orchestrator from the given mapping tables and
// configuration. A nil tables argument selects the default deployment
// tables; zero limits fall back to the package constants.
func New(tables *compact.Tables, cfg config.Config) *Orchestrator {
	limits := cfg.Limits
	if limits.MaxTokensPerResponse <= 0 {
		limits.MaxTokensPerResponse = resample.MaxTokensPerResponse
	}
	if limits.TokensPerPoint <= 0 {
		limits.TokensPerPoint = resample.TokensPerPoint
	}
	return &Orchestrator{
		compactor:     compact.New(tables),
		limits:        limits,
		coerceStrings: cfg.Pipeline.CoerceNumericStrings,
	}
}

// NewDefault creates an Orchestrator with default tables, limits and the
// source deployment's numeric-string coercion behavior.
func NewDefault() *Orchestrator {
	return New(nil, config.Config{
		Pipeline: config.PipelineConfig{CoerceNumericStrings: true},
	})
}

// Optimize transforms one envelope according to the options. It never
// returns an error: a failing stage is logged and the output of the last
// successfully completed stage carries forward.
func (o *Orchestrator) Optimize(env *models.Record, opts Options) *models.Record {
	if env == nil {
		return nil
	}
	run := uuid.NewString()
	flags := opts.flags(o.coerceStrings)

	out := o.runStage(run, "resample", env, o.resampleStage)
	if opts.ArrayFormat {
		out = o.runStage(run, "array_format", out, o.arrayStage)
	}
	if flags.RemoveNulls {
		out = o.runStage(run, "remove_nulls", out, o.compactor.RemoveNulls)
	}
	if flags.ShortenFields {
		out = o.runStage(run, "shorten_fields", out, o.compactor.ShortenFields)
	}
	if flags.ShortenEnums {
		out = o.runStage(run, "shorten_enums", out, o.compactor.ShortenEnums)
	}
	if flags.OptimizeNumbers {
		out = o.runStage(run, "optimize_numbers", out, func(r *models.Record) *models.Record {
			return o.compactor.OptimizeNumbers(r, flags.CoerceNumericStrings)
		})
	}
	return out
}

// runStage executes one stage under recover. On panic the stage's input
// (the last good state) is returned and downstream stages still run.
func (o *Orchestrator) runStage(run, name string, in *models.Record, fn func(*models.Record) *models.Record) (out *models.Record) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error().Str("run", run).Str("stage", name).Interface("panic", r).Msg("stage failed, keeping previous output")
			out = in
		}
	}()
	out = fn(in)
	if out == nil {
		out = in
	}
	return out
}

// resampleStage downsamples the envelope's series when it exceeds the
// span or token budget. Envelopes without a recognizable schema, or whose
// series is not a list of records, pass through unchanged.
func (o *Orchestrator) resampleStage(env *models.Record) *models.Record {
	schema, seriesKey, ok := arrayformat.Detect(env)
	if !ok {
		return env
	}
	raw, _ := env.Get(seriesKey)
	points, skipped := toPoints(raw)
	if points == nil {
		return env
	}
	if skipped > 0 {
		logger.L().Warn().Str("series", seriesKey).Int("skipped", skipped).Msg("resample: ignoring non-record series elements")
	}

	span, ok := resample.SeriesSpanDays(points)
	if !ok {
		return env
	}
	if !resample.ShouldOptimize(len(points), span, o.limits.TokensPerPoint, o.limits.MaxTokensPerResponse) {
		return env
	}

	g := resample.ChooseGranularity(span)
	rules := resample.OHLCVRules()
	if schema.Kind == arrayformat.KindFund {
		rules = resample.FundRules()
	}

	collapsed := resample.Resample(points, g, rules)
	if len(collapsed) == len(points) {
		return env
	}

	out := env.Clone()
	series := make([]any, len(collapsed))
	for i, p := range collapsed {
		series[i] = p
	}
	out.Set(seriesKey, series)
	attachOptimizationInfo(out, len(points), len(collapsed), span, g)
	return out
}

// attachOptimizationInfo records what the resampler did, under the same
// metadata key and fields the upstream deployment uses.
func attachOptimizationInfo(env *models.Record, originalCount, optimizedCount, spanDays int, g resample.Granularity) {
	info := models.NewRecord()
	info.Set("optimizasyon_yapildi", originalCount != optimizedCount)
	info.Set("orijinal_veri_sayisi", int64(originalCount))
	info.Set("optimize_veri_sayisi", int64(optimizedCount))
	info.Set("zaman_araligi_gun", int64(spanDays))
	info.Set("ornekleme_frekansi", g.Code())
	var saved float64
	if originalCount > 0 {
		saved = math.Round(float64(originalCount-optimizedCount)/float64(originalCount)*1000) / 10
	}
	info.Set("token_tasarrufu_yuzdesi", saved)
	env.Set("optimizasyon_bilgisi", info)
}

// arrayStage replaces the detected series with fixed-order arrays and tags
// the envelope with format_type=array so consumers know how to read it.
func (o *Orchestrator) arrayStage(env *models.Record) *models.Record {
	schema, seriesKey, ok := arrayformat.Detect(env)
	if !ok {
		return env
	}
	raw, _ := env.Get(seriesKey)

	var points []*models.Record
	switch v := raw.(type) {
	case []any:
		var skipped int
		points, skipped = toPoints(v)
		if points == nil {
			return env
		}
		if skipped > 0 {
			logger.L().Warn().Str("series", seriesKey).Int("skipped", skipped).Msg("array_format: ignoring non-record series elements")
		}
	case *models.Record:
		// Columnar kline payloads ({t,o,h,l,c,v} parallel arrays).
		rows, ok := arrayformat.KlineRows(v)
		if !ok {
			return env
		}
		points = rows
	default:
		return env
	}

	rows := arrayformat.Encode(points, schema)
	series := make([]any, len(rows))
	for i, r := range rows {
		series[i] = r
	}

	out := env.Clone()
	out.Set(seriesKey, series)
	out.Set("format_type", "array")
	return out
}

// toPoints extracts the record elements of a series value. It returns nil
// when the value is not a list or contains no records at all; the second
// return counts non-record elements that were ignored.
func toPoints(raw any) ([]*models.Record, int) {
	list, ok := raw.([]any)
	if !ok {
		return nil, 0
	}
	points := make([]*models.Record, 0, len(list))
	skipped := 0
	for _, item := range list {
		if p, ok := item.(*models.Record); ok {
			points = append(points, p)
		} else {
			skipped++
		}
	}
	if len(points) == 0 {
		return nil, skipped
	}
	return points, skipped
}
