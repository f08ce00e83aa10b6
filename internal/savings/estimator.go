// Package savings reports the size and token delta between two
// representations of a payload. It is diagnostic only and sits outside the
// transformation path: estimating never changes either input.
package savings

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// CharsPerToken is the fixed serialized-characters-per-token constant used
// for token estimates (1 token ≈ 4 characters).
const CharsPerToken = 4

// Report describes the measured size difference between a payload before
// and after optimization.
type Report struct {
	BeforeBytes  int     `json:"before_bytes"`
	AfterBytes   int     `json:"after_bytes"`
	DeltaBytes   int     `json:"delta_bytes"`
	DeltaPercent float64 `json:"delta_percent"`
	BeforeTokens int     `json:"before_tokens_est"`
	AfterTokens  int     `json:"after_tokens_est"`
	DeltaTokens  int     `json:"delta_tokens_est"`
	PointCount   int     `json:"point_count,omitempty"`
}

// Estimate computes the delta between two serialized sizes in bytes.
// A zero before-size yields a zero percentage rather than a division error.
func Estimate(beforeBytes, afterBytes int) Report {
	r := Report{
		BeforeBytes:  beforeBytes,
		AfterBytes:   afterBytes,
		DeltaBytes:   beforeBytes - afterBytes,
		BeforeTokens: beforeBytes / CharsPerToken,
		AfterTokens:  afterBytes / CharsPerToken,
	}
	r.DeltaTokens = r.BeforeTokens - r.AfterTokens
	if beforeBytes > 0 {
		r.DeltaPercent = round2(float64(r.DeltaBytes) / float64(beforeBytes) * 100)
	}
	return r
}

// EstimateSeries is Estimate plus the number of series points the payload
// carries, for reports about array-encoded batches.
func EstimateSeries(beforeBytes, afterBytes, pointCount int) Report {
	r := Estimate(beforeBytes, afterBytes)
	r.PointCount = pointCount
	return r
}

// EstimateJSON serializes both values and reports the delta of the JSON
// encodings. Neither value is modified.
func EstimateJSON(before, after any) (Report, error) {
	b, err := json.Marshal(before)
	if err != nil {
		return Report{}, fmt.Errorf("marshal before: %w", err)
	}
	a, err := json.Marshal(after)
	if err != nil {
		return Report{}, fmt.Errorf("marshal after: %w", err)
	}
	return Estimate(len(b), len(a)), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
