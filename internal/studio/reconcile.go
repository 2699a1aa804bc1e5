package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"renderlab/internal/history"
	"renderlab/internal/providers/genai"
)

// ArtifactStore persists generated media and returns the key it was stored
// under.
type ArtifactStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Watermarker stamps a logo onto a finished image.
type Watermarker interface {
	Apply(data []byte, mime string, cfg WatermarkConfig) ([]byte, string, error)
}

// BatchResult summarizes one reconciled batch.
type BatchResult struct {
	BatchID       string  `json:"batch_id"`
	Succeeded     int     `json:"succeeded"`
	Failed        int     `json:"failed"`
	ActualCostUSD float64 `json:"actual_cost_usd"`
	ActualCostVND int64   `json:"actual_cost_vnd"`
}

// AllFailed reports whether not a single job produced an artifact.
func (r BatchResult) AllFailed() bool {
	return r.Succeeded == 0 && r.Failed > 0
}

// Reconciler settles a finished batch: it persists artifacts, closes out
// every history entry with actual cost and variance, and folds the batch into
// the lifetime stats exactly once.
type Reconciler struct {
	History   history.Store
	Stats     history.StatsStore
	Artifacts ArtifactStore
	Watermark Watermarker
	Logger    zerolog.Logger

	// OnAuthError fires at most once per batch when the backend rejected the
	// credential itself rather than a request.
	OnAuthError func(ctx context.Context)
}

// Reconcile walks the outcome slots in job order. Outcome i settles history
// entry outcomes[i].Job.ID, so artifacts can never land on a sibling's entry.
func (r *Reconciler) Reconcile(ctx context.Context, batchID string, s Settings, outcomes []JobOutcome) (BatchResult, error) {
	result := BatchResult{BatchID: batchID}
	price := PriceFor(s.Model)
	_, _, estCost := PerUnitEstimate(s)

	delta := history.StatsDelta{Model: string(s.Model)}
	authFlagged := false

	for _, outcome := range outcomes {
		entryID := outcome.Job.ID

		if !outcome.Succeeded() {
			result.Failed++
			message := "insufficient results"
			if outcome.Err != nil {
				message = outcome.Err.Error()
			}
			if outcome.Err != nil && genai.IsAuth(outcome.Err) && !authFlagged {
				authFlagged = true
				if r.OnAuthError != nil {
					r.OnAuthError(ctx)
				}
			}
			if err := r.History.Fail(ctx, entryID, message); err != nil {
				r.Logger.Error().Err(err).Str("entry_id", entryID).Msg("reconcile: fail entry")
			}
			continue
		}

		data, mime := outcome.Data, outcome.MIME
		if !outcome.Job.IsVideo && s.Watermark.Enabled && r.Watermark != nil {
			stamped, stampedMIME, err := r.Watermark.Apply(data, mime, s.Watermark)
			if err != nil {
				// A bad logo must not discard a paid render.
				r.Logger.Warn().Err(err).Str("entry_id", entryID).Msg("reconcile: watermark failed, keeping original")
			} else {
				data, mime = stamped, stampedMIME
			}
		}

		key := artifactKey(batchID, entryID, mime)
		storedKey, err := r.Artifacts.Write(ctx, key, data)
		if err != nil {
			result.Failed++
			if ferr := r.History.Fail(ctx, entryID, fmt.Sprintf("persist artifact: %v", err)); ferr != nil {
				r.Logger.Error().Err(ferr).Str("entry_id", entryID).Msg("reconcile: fail entry")
			}
			continue
		}

		actualCost := TokenCost(outcome.InputTokens, outcome.OutputTokens, price)
		cost := history.CostData{
			ActualInputTokens:  outcome.InputTokens,
			ActualOutputTokens: outcome.OutputTokens,
			ActualCostUSD:      actualCost,
			VariancePct:        history.Variance(estCost, actualCost),
		}
		if err := r.History.Complete(ctx, entryID, storedKey, mime, cost); err != nil {
			r.Logger.Error().Err(err).Str("entry_id", entryID).Msg("reconcile: complete entry")
		}

		result.Succeeded++
		result.ActualCostUSD += actualCost
		delta.Renders++
		if outcome.Job.IsVideo {
			delta.Videos++
		}
		delta.InputTokens += int64(outcome.InputTokens)
		delta.OutputTokens += int64(outcome.OutputTokens)
		delta.CostUSD += actualCost
	}

	result.ActualCostVND = VNDCost(result.ActualCostUSD)

	if err := r.Stats.Increment(ctx, delta); err != nil {
		r.Logger.Error().Err(err).Str("batch_id", batchID).Msg("reconcile: increment stats")
	}

	r.Logger.Info().
		Str("batch_id", batchID).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Float64("actual_cost_usd", result.ActualCostUSD).
		Msg("reconcile: batch settled")
	return result, nil
}

func artifactKey(batchID, entryID, mime string) string {
	category := "images"
	if strings.HasPrefix(mime, "video/") {
		category = "videos"
	}
	return fmt.Sprintf("generated/%s/%s/%s%s", category, batchID, entryID, extensionForMIME(mime))
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}
