package studio

import "math"

// Pricing constants. Token estimates are per generated unit; unit prices are
// USD per million tokens with a safety buffer baked in to absorb hidden
// token overhead.
const (
	vndRate = 26000

	estInputImageTokens        = 258
	estInputTextTokens         = 800
	estOutputTokensPerImage    = 1024
	estVideoInputTokens        = 2000
	estVideoOutputTokensPerSec = 1500

	safetyBuffer = 1.2
)

// Price holds the per-million-token unit prices for a model tier.
type Price struct {
	Input  float64
	Output float64
}

// PriceFor returns the buffered unit prices for a model identifier. Unknown
// identifiers get the fast-image fallback tier.
func PriceFor(model ModelID) Price {
	switch model {
	case ModelProImage:
		return Price{Input: 2.50 * safetyBuffer, Output: 10.00 * safetyBuffer}
	case ModelVideo:
		return Price{Input: 5.00 * safetyBuffer, Output: 20.00 * safetyBuffer}
	default:
		return Price{Input: 0.10 * safetyBuffer, Output: 0.40 * safetyBuffer}
	}
}

// BatchSize is the single source of truth for how many jobs a settings
// snapshot expands into. Estimate and Expand both consume it, so the quoted
// unit count and the actual job count can never drift apart.
func BatchSize(s Settings) int {
	if s.Model.IsVideo() {
		return 1
	}
	return axisLen(len(s.Devices)) *
		axisLen(len(s.ViewAngles)) *
		axisLen(len(s.FocalLengths)) *
		axisLen(s.OutputCount)
}

func axisLen(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Quote is the pre-confirmation cost estimate for one batch.
type Quote struct {
	Count             int     `json:"count"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	CostUSD           float64 `json:"cost_usd"`
	CostVND           int64   `json:"cost_vnd"`
	IsVideo           bool    `json:"is_video"`
}

// Estimate computes the unit count, expected token usage and cost for a
// settings snapshot. Pure and deterministic; safe to call repeatedly with the
// same snapshot the expander will receive.
func Estimate(s Settings) Quote {
	price := PriceFor(s.Model)
	q := Quote{Count: BatchSize(s), IsVideo: s.Model.IsVideo()}

	if q.IsVideo {
		duration := s.VideoDuration
		if duration <= 0 {
			duration = minVideoDuration
		}
		q.TotalInputTokens = estVideoInputTokens
		q.TotalOutputTokens = duration * estVideoOutputTokensPerSec
	} else {
		inTok, outTok := perImageTokens(s)
		q.TotalInputTokens = inTok * q.Count
		q.TotalOutputTokens = outTok * q.Count
	}

	q.CostUSD = TokenCost(q.TotalInputTokens, q.TotalOutputTokens, price)
	q.CostVND = int64(math.Round(q.CostUSD * vndRate))
	return q
}

// PerUnitEstimate returns the expected tokens and cost for a single job.
// History entries are seeded with these figures at submit time so the
// reconciler can compute a variance against the actual usage later.
func PerUnitEstimate(s Settings) (inputTokens, outputTokens int, costUSD float64) {
	price := PriceFor(s.Model)
	if s.Model.IsVideo() {
		duration := s.VideoDuration
		if duration <= 0 {
			duration = minVideoDuration
		}
		inputTokens = estVideoInputTokens
		outputTokens = duration * estVideoOutputTokensPerSec
	} else {
		inputTokens, outputTokens = perImageTokens(s)
	}
	return inputTokens, outputTokens, TokenCost(inputTokens, outputTokens, price)
}

// TokenCost converts a token usage pair into USD at the given unit prices.
func TokenCost(inputTokens, outputTokens int, price Price) float64 {
	return (float64(inputTokens)/1e6)*price.Input + (float64(outputTokens)/1e6)*price.Output
}

// VNDCost converts a USD amount into display currency.
func VNDCost(usd float64) int64 {
	return int64(math.Round(usd * vndRate))
}

func perImageTokens(s Settings) (int, int) {
	out := estOutputTokensPerImage
	// The pro tier bills 4K output at twice the 1K rate.
	if s.Model == ModelProImage && s.HighRes {
		out *= 2
	}
	return estInputImageTokens + estInputTextTokens, out
}
