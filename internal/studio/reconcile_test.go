package studio

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"renderlab/internal/history"
	"renderlab/internal/providers/genai"
)

type memoryHistory struct {
	completed map[string]history.CostData
	keys      map[string]string
	failed    map[string]string
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{
		completed: map[string]history.CostData{},
		keys:      map[string]string{},
		failed:    map[string]string{},
	}
}

func (m *memoryHistory) Insert(context.Context, []history.Entry) error { return nil }

func (m *memoryHistory) Complete(_ context.Context, id, storageKey, _ string, cost history.CostData) error {
	m.completed[id] = cost
	m.keys[id] = storageKey
	return nil
}

func (m *memoryHistory) Fail(_ context.Context, id, message string) error {
	m.failed[id] = message
	return nil
}

func (m *memoryHistory) MarkInterrupted(context.Context) (int64, error) { return 0, nil }
func (m *memoryHistory) List(context.Context, int, int) ([]history.Entry, error) {
	return nil, nil
}
func (m *memoryHistory) Get(context.Context, string) (history.Entry, error) {
	return history.Entry{}, nil
}
func (m *memoryHistory) ListByBatch(context.Context, string) ([]history.Entry, error) {
	return nil, nil
}
func (m *memoryHistory) Delete(context.Context, string) error { return nil }
func (m *memoryHistory) Clear(context.Context) error          { return nil }

type memoryStats struct {
	increments []history.StatsDelta
}

func (m *memoryStats) Increment(_ context.Context, delta history.StatsDelta) error {
	if !delta.Zero() {
		m.increments = append(m.increments, delta)
	}
	return nil
}

func (m *memoryStats) Get(context.Context) (history.Stats, error) { return history.Stats{}, nil }
func (m *memoryStats) Reset(context.Context) error                { return nil }

type memoryArtifacts struct {
	written map[string][]byte
	err     error
}

func (m *memoryArtifacts) Write(_ context.Context, key string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.written == nil {
		m.written = map[string][]byte{}
	}
	m.written[key] = data
	return key, nil
}

func newTestReconciler(h history.Store, stats history.StatsStore, artifacts ArtifactStore) *Reconciler {
	return &Reconciler{
		History:   h,
		Stats:     stats,
		Artifacts: artifacts,
		Logger:    zerolog.Nop(),
	}
}

func TestReconcileComputesVariance(t *testing.T) {
	h := newMemoryHistory()
	stats := &memoryStats{}
	r := newTestReconciler(h, stats, &memoryArtifacts{})

	s := DefaultSettings()
	jobs := Expand(s)
	estIn, estOut, estCost := PerUnitEstimate(s)

	// Actual usage 20% above the estimate on both axes.
	outcomes := []JobOutcome{{
		Job:          jobs[0],
		Data:         []byte("img"),
		MIME:         "image/png",
		InputTokens:  estIn * 120 / 100,
		OutputTokens: estOut * 120 / 100,
	}}

	result, err := r.Reconcile(context.Background(), "batch-1", s, outcomes)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	cost, ok := h.completed[jobs[0].ID]
	if !ok {
		t.Fatal("entry was not completed")
	}
	if math.Abs(cost.VariancePct-20) > 0.2 {
		t.Errorf("expected roughly +20%% variance, got %v", cost.VariancePct)
	}
	if cost.ActualCostUSD <= estCost {
		t.Errorf("actual cost %v should exceed estimate %v", cost.ActualCostUSD, estCost)
	}
	if key := h.keys[jobs[0].ID]; !strings.HasSuffix(key, ".png") || !strings.Contains(key, "batch-1") {
		t.Errorf("unexpected storage key %q", key)
	}
}

func TestReconcileMissingDataIsInsufficientResults(t *testing.T) {
	h := newMemoryHistory()
	r := newTestReconciler(h, &memoryStats{}, &memoryArtifacts{})

	s := DefaultSettings()
	jobs := Expand(s)
	outcomes := []JobOutcome{{Job: jobs[0]}}

	result, err := r.Reconcile(context.Background(), "batch-2", s, outcomes)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !result.AllFailed() {
		t.Fatalf("expected batch-wide failure, got %+v", result)
	}
	if msg := h.failed[jobs[0].ID]; msg != "insufficient results" {
		t.Errorf("unexpected failure message %q", msg)
	}
}

func TestReconcileStatsCountOnlySuccesses(t *testing.T) {
	h := newMemoryHistory()
	stats := &memoryStats{}
	r := newTestReconciler(h, stats, &memoryArtifacts{})

	s := imageSettings()
	jobs := Expand(s)
	outcomes := []JobOutcome{
		{Job: jobs[0], Data: []byte("img"), MIME: "image/png", InputTokens: 1058, OutputTokens: 1024},
		{Job: jobs[1], Err: errors.New("boom")},
	}

	if _, err := r.Reconcile(context.Background(), "batch-3", s, outcomes); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(stats.increments) != 1 {
		t.Fatalf("stats must be incremented exactly once per batch, got %d", len(stats.increments))
	}
	delta := stats.increments[0]
	if delta.Renders != 1 || delta.Videos != 0 {
		t.Errorf("unexpected delta: %+v", delta)
	}
	if delta.InputTokens != 1058 || delta.OutputTokens != 1024 {
		t.Errorf("unexpected token totals: %+v", delta)
	}
	if delta.Model != string(s.Model) {
		t.Errorf("delta must carry the batch model, got %q", delta.Model)
	}
}

func TestReconcileFlagsAuthErrorOnce(t *testing.T) {
	h := newMemoryHistory()
	r := newTestReconciler(h, &memoryStats{}, &memoryArtifacts{})
	flagged := 0
	r.OnAuthError = func(context.Context) { flagged++ }

	s := imageSettings()
	jobs := Expand(s)
	authErr := &genai.APIError{StatusCode: 403, Message: "permission denied"}
	outcomes := []JobOutcome{
		{Job: jobs[0], Err: authErr},
		{Job: jobs[1], Err: authErr},
	}

	if _, err := r.Reconcile(context.Background(), "batch-4", s, outcomes); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if flagged != 1 {
		t.Errorf("auth hook must fire once per batch, fired %d times", flagged)
	}
}

type stampWatermarker struct{ called bool }

func (w *stampWatermarker) Apply(data []byte, mime string, _ WatermarkConfig) ([]byte, string, error) {
	w.called = true
	return append([]byte("wm:"), data...), mime, nil
}

func TestReconcileWatermarksImagesOnly(t *testing.T) {
	h := newMemoryHistory()
	artifacts := &memoryArtifacts{}
	wm := &stampWatermarker{}
	r := newTestReconciler(h, &memoryStats{}, artifacts)
	r.Watermark = wm

	s := DefaultSettings()
	s.Watermark.Enabled = true
	s.Watermark.URL = "uploads/logo.png"
	jobs := Expand(s)

	if _, err := r.Reconcile(context.Background(), "batch-5", s, []JobOutcome{
		{Job: jobs[0], Data: []byte("img"), MIME: "image/png", InputTokens: 1, OutputTokens: 1},
	}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !wm.called {
		t.Fatal("watermark must run for images")
	}
	for _, data := range artifacts.written {
		if !strings.HasPrefix(string(data), "wm:") {
			t.Error("stored artifact must be the stamped copy")
		}
	}

	// Video artifacts pass through untouched.
	wm.called = false
	vs := DefaultSettings()
	vs.Model = ModelVideo
	vs.Watermark.Enabled = true
	vs.Normalize()
	vjobs := Expand(vs)
	if _, err := r.Reconcile(context.Background(), "batch-6", vs, []JobOutcome{
		{Job: vjobs[0], Data: []byte("mp4"), MIME: "video/mp4", InputTokens: 1, OutputTokens: 1},
	}); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if wm.called {
		t.Error("watermark must not run for video")
	}
}
