package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"renderlab/internal/history"
	"renderlab/internal/sqlinline"
	"renderlab/internal/studio"
	"renderlab/pkg/zip"
)

type batchSubmitRequest struct {
	Settings     studio.Settings `json:"settings"`
	ProductKey   string          `json:"product_key"`
	ReferenceKey string          `json:"reference_key,omitempty"`
}

type batchSubmitResponse struct {
	BatchID        string       `json:"batch_id"`
	Status         string       `json:"status"`
	Count          int          `json:"count"`
	Quote          studio.Quote `json:"quote"`
	CostVNDDisplay string       `json:"cost_vnd_display"`
}

// SubmitBatch expands a settings snapshot into jobs, opens a processing
// history entry per job and queues the batch for the worker. The response
// carries the same quote Estimate would have produced for this snapshot.
func (a *App) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req batchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ProductKey == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "product_key is required")
		return
	}
	req.Settings.Normalize()
	if req.ReferenceKey == "" {
		req.ReferenceKey = req.Settings.ReferenceImageURL
	}

	jobs := studio.Expand(req.Settings)
	quote := studio.Estimate(req.Settings)
	estIn, estOut, estCost := studio.PerUnitEstimate(req.Settings)

	settingsJSON, err := json.Marshal(req.Settings)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "settings are not serializable")
		return
	}

	batchID := uuid.NewString()
	entries := make([]history.Entry, 0, len(jobs))
	for _, job := range jobs {
		renderType := history.RenderImage
		if job.IsVideo {
			renderType = history.RenderVideo
		}
		entries = append(entries, history.Entry{
			ID:         job.ID,
			BatchID:    batchID,
			Status:     history.StatusProcessing,
			RenderType: renderType,
			Model:      string(req.Settings.Model),
			Prompt:     job.Prompt,
			Settings:   settingsJSON,
			Seed:       job.BatchSeed,
			Cost: history.CostData{
				EstInputTokens:  estIn,
				EstOutputTokens: estOut,
				EstCostUSD:      estCost,
			},
		})
	}
	if err := a.History.Insert(r.Context(), entries); err != nil {
		a.Logger.Error().Err(err).Str("batch_id", batchID).Msg("submit: insert history entries")
		a.error(w, http.StatusInternalServerError, "internal", "failed to open history entries")
		return
	}

	jobsJSON, err := json.Marshal(jobs)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to encode jobs")
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QEnqueueBatch, batchID, settingsJSON, jobsJSON, req.ProductKey, req.ReferenceKey); err != nil {
		a.Logger.Error().Err(err).Str("batch_id", batchID).Msg("submit: enqueue batch")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue batch")
		return
	}

	a.json(w, http.StatusAccepted, batchSubmitResponse{
		BatchID:        batchID,
		Status:         "queued",
		Count:          len(jobs),
		Quote:          quote,
		CostVNDDisplay: FormatVND(quote.CostVND),
	})
}

// BatchStatus returns the queue row together with every history entry the
// batch opened.
func (a *App) BatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	if batchID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "batch id required")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QGetBatch, batchID)
	var (
		id, status, productKey, referenceKey string
		settingsJSON, jobsJSON               []byte
		createdAt, updatedAt                 time.Time
	)
	if err := row.Scan(&id, &status, &settingsJSON, &jobsJSON, &productKey, &referenceKey, &createdAt, &updatedAt); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "batch not found")
		return
	}

	entries, err := a.History.ListByBatch(r.Context(), batchID)
	if err != nil {
		a.Logger.Error().Err(err).Str("batch_id", batchID).Msg("status: list entries")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load batch entries")
		return
	}

	completed, failed := 0, 0
	for _, e := range entries {
		switch e.Status {
		case history.StatusCompleted:
			completed++
		case history.StatusFailed:
			failed++
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"batch_id":   id,
		"status":     status,
		"settings":   json.RawMessage(settingsJSON),
		"count":      len(entries),
		"completed":  completed,
		"failed":     failed,
		"entries":    entries,
		"created_at": createdAt,
		"updated_at": updatedAt,
	})
}

// BatchDownload bundles every completed artifact of the batch into one zip.
func (a *App) BatchDownload(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	if batchID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "batch id required")
		return
	}

	entries, err := a.History.ListByBatch(r.Context(), batchID)
	if err != nil || len(entries) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "batch not found")
		return
	}

	var assets []zip.Asset
	for _, e := range entries {
		if e.Status != history.StatusCompleted || e.StorageKey == "" {
			continue
		}
		data, err := a.Files.Read(r.Context(), e.StorageKey)
		if err != nil {
			a.Logger.Warn().Err(err).Str("entry_id", e.ID).Msg("download: read artifact")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: path.Base(e.StorageKey),
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "batch has no completed artifacts")
		return
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.Logger.Error().Err(err).Str("batch_id", batchID).Msg("download: build archive")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batchID+".zip"))
	_, _ = w.Write(archive)
}
