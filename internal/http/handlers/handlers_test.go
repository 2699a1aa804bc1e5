package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"renderlab/internal/history"
	"renderlab/internal/storage"
	"renderlab/internal/studio"
)

type recordedExec struct {
	query string
	args  []any
}

type stubSQL struct {
	execs   []recordedExec
	execErr error
	row     pgx.Row
}

func (s *stubSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, recordedExec{query: query, args: args})
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	if s.row != nil {
		return s.row
	}
	return NewSimpleRow(nil)
}

func (s *stubSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type fakeHistory struct {
	inserted  []history.Entry
	insertErr error
	entries   []history.Entry
	cleared   bool
}

func (f *fakeHistory) Insert(_ context.Context, entries []history.Entry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, entries...)
	return nil
}

func (f *fakeHistory) Complete(context.Context, string, string, string, history.CostData) error {
	return nil
}
func (f *fakeHistory) Fail(context.Context, string, string) error { return nil }

func (f *fakeHistory) MarkInterrupted(context.Context) (int64, error) { return 0, nil }

func (f *fakeHistory) List(context.Context, int, int) ([]history.Entry, error) {
	return f.entries, nil
}

func (f *fakeHistory) Get(_ context.Context, id string) (history.Entry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return history.Entry{}, pgx.ErrNoRows
}

func (f *fakeHistory) ListByBatch(_ context.Context, batchID string) ([]history.Entry, error) {
	var out []history.Entry
	for _, e := range f.entries {
		if e.BatchID == batchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistory) Delete(context.Context, string) error { return nil }

func (f *fakeHistory) Clear(context.Context) error {
	f.cleared = true
	return nil
}

type fakeStats struct {
	stats history.Stats
	reset bool
}

func (f *fakeStats) Increment(context.Context, history.StatsDelta) error { return nil }

func (f *fakeStats) Get(context.Context) (history.Stats, error) { return f.stats, nil }
func (f *fakeStats) Reset(context.Context) error {
	f.reset = true
	return nil
}

func newTestApp(sql *stubSQL, h *fakeHistory, stats *fakeStats) *App {
	return &App{
		SQL:            sql,
		Logger:         zerolog.Nop(),
		History:        h,
		StatsRepo:      stats,
		StorageBaseURL: "http://localhost:8080/static",
	}
}

func TestEstimateMatchesBatchSize(t *testing.T) {
	app := newTestApp(&stubSQL{}, &fakeHistory{}, &fakeStats{})

	settings := studio.DefaultSettings()
	settings.Devices = []studio.Device{studio.DeviceProfessional, studio.DeviceMobile}
	settings.ViewAngles = []studio.ViewAngle{studio.AngleEyeLevel, studio.AngleTopDown}
	settings.FocalLengths = []studio.FocalLength{studio.Lens35mm, studio.Lens85mm}
	settings.OutputCount = 2

	body, _ := json.Marshal(settings)
	req := httptest.NewRequest(http.MethodPost, "/v1/estimate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	app.Estimate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Count          int    `json:"count"`
		CostVNDDisplay string `json:"cost_vnd_display"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 16 {
		t.Errorf("expected 16 units (2x2x2x2), got %d", resp.Count)
	}
	if !strings.Contains(resp.CostVNDDisplay, "₫") {
		t.Errorf("display price should carry the dong sign, got %q", resp.CostVNDDisplay)
	}
}

func TestSubmitBatchOpensEntriesAndEnqueues(t *testing.T) {
	sql := &stubSQL{}
	h := &fakeHistory{}
	app := newTestApp(sql, h, &fakeStats{})

	settings := studio.DefaultSettings()
	settings.OutputCount = 3
	payload, _ := json.Marshal(batchSubmitRequest{
		Settings:   settings,
		ProductKey: "uploads/product.png",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/batches", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	app.SubmitBatch(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp batchSubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("expected 3 jobs, got %d", resp.Count)
	}
	if len(h.inserted) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(h.inserted))
	}
	for _, e := range h.inserted {
		if e.Status != history.StatusProcessing {
			t.Errorf("entries must open as processing, got %q", e.Status)
		}
		if e.BatchID != resp.BatchID {
			t.Errorf("entry batch id mismatch: %q vs %q", e.BatchID, resp.BatchID)
		}
		if e.Cost.EstCostUSD <= 0 {
			t.Error("entries must be seeded with a cost estimate")
		}
	}
	if len(sql.execs) != 1 {
		t.Fatalf("expected one enqueue exec, got %d", len(sql.execs))
	}
	if !strings.Contains(sql.execs[0].query, "render_batches") {
		t.Errorf("unexpected enqueue query: %s", sql.execs[0].query)
	}
}

func TestUploadCreatesIdleEntry(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	h := &fakeHistory{}
	app := newTestApp(&stubSQL{}, h, &fakeStats{})
	app.Files = files

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "product.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Upload(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(h.inserted) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(h.inserted))
	}
	e := h.inserted[0]
	if e.Status != history.StatusIdle {
		t.Errorf("upload entries open as idle, got %q", e.Status)
	}
	if !strings.HasPrefix(e.StorageKey, "uploads/") || !strings.HasSuffix(e.StorageKey, ".png") {
		t.Errorf("unexpected storage key %q", e.StorageKey)
	}
}

func TestSubmitBatchRequiresProduct(t *testing.T) {
	app := newTestApp(&stubSQL{}, &fakeHistory{}, &fakeStats{})
	payload, _ := json.Marshal(batchSubmitRequest{Settings: studio.DefaultSettings()})
	req := httptest.NewRequest(http.MethodPost, "/v1/batches", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	app.SubmitBatch(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatsSummaryFormatsTotals(t *testing.T) {
	stats := &fakeStats{stats: history.Stats{
		TotalRenders: 12,
		TotalVideos:  2,
		TotalCostUSD: 1.5,
	}}
	app := newTestApp(&stubSQL{}, &fakeHistory{}, stats)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	app.StatsSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["total_renders"].(float64) != 12 {
		t.Errorf("unexpected total_renders: %v", resp["total_renders"])
	}
	if resp["total_cost_vnd"].(float64) != 39000 {
		t.Errorf("expected 39000 VND for $1.50, got %v", resp["total_cost_vnd"])
	}
}
