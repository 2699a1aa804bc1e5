// Package history records every render the studio has attempted, together
// with its estimated and actual cost, and keeps running usage totals.
package history

import (
	"context"
	"encoding/json"
	"time"
)

const (
	StatusIdle       = "idle"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	RenderImage = "image"
	RenderVideo = "video"
)

// CostData pairs the quoted figures an entry was seeded with at submit time
// against what the backend actually billed once the render finished.
type CostData struct {
	EstInputTokens     int     `json:"est_input_tokens"`
	EstOutputTokens    int     `json:"est_output_tokens"`
	EstCostUSD         float64 `json:"est_cost_usd"`
	ActualInputTokens  int     `json:"actual_input_tokens"`
	ActualOutputTokens int     `json:"actual_output_tokens"`
	ActualCostUSD      float64 `json:"actual_cost_usd"`
	VariancePct        float64 `json:"variance_pct"`
}

// Entry is one render attempt. Settings is kept as the raw snapshot the batch
// was submitted with so the entry can be replayed without this package
// knowing the snapshot's shape.
type Entry struct {
	ID           string          `json:"id"`
	BatchID      string          `json:"batch_id"`
	Status       string          `json:"status"`
	RenderType   string          `json:"render_type"`
	Model        string          `json:"model"`
	Prompt       string          `json:"prompt"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	Seed         int32           `json:"seed,omitempty"`
	StorageKey   string          `json:"storage_key,omitempty"`
	MIME         string          `json:"mime,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Cost         CostData        `json:"cost"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Variance is the percentage deviation of the actual cost from the estimate.
// A zero estimate yields zero so a free render never divides by zero.
func Variance(estimated, actual float64) float64 {
	if estimated == 0 {
		return 0
	}
	return (actual - estimated) / estimated * 100
}

// Store persists render history entries. Insert writes entries with the
// status they carry: idle for bare uploads, processing for submitted jobs.
type Store interface {
	Insert(ctx context.Context, entries []Entry) error
	Complete(ctx context.Context, id, storageKey, mime string, cost CostData) error
	Fail(ctx context.Context, id, message string) error
	MarkInterrupted(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	ListByBatch(ctx context.Context, batchID string) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Stats are lifetime usage totals across all batches. ModelCounts tallies
// successful renders per backend model id.
type Stats struct {
	TotalRenders      int64            `json:"total_renders"`
	TotalVideos       int64            `json:"total_videos"`
	TotalInputTokens  int64            `json:"total_input_tokens"`
	TotalOutputTokens int64            `json:"total_output_tokens"`
	TotalCostUSD      float64          `json:"total_cost_usd"`
	ModelCounts       map[string]int64 `json:"model_counts"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// StatsDelta is one batch's contribution to the lifetime totals. A batch
// runs against a single model, so one Model tag covers the whole delta.
type StatsDelta struct {
	Model        string
	Renders      int64
	Videos       int64
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// Zero reports whether applying the delta would change nothing.
func (d StatsDelta) Zero() bool {
	return d.Renders == 0 && d.Videos == 0 && d.InputTokens == 0 && d.OutputTokens == 0 && d.CostUSD == 0
}

// StatsStore persists the lifetime totals.
type StatsStore interface {
	Increment(ctx context.Context, delta StatsDelta) error
	Get(ctx context.Context) (Stats, error)
	Reset(ctx context.Context) error
}
