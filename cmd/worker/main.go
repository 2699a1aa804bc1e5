package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"renderlab/internal/history"
	"renderlab/internal/infra"
	"renderlab/internal/infra/credentials"
	"renderlab/internal/providers/genai"
	"renderlab/internal/sqlinline"
	"renderlab/internal/storage"
	"renderlab/internal/studio"
	"renderlab/internal/watermark"
)

const batchPollInterval = 2 * time.Second

type batch struct {
	ID           string
	Settings     studio.Settings
	Jobs         []studio.RenderJob
	ProductKey   string
	ReferenceKey string
}

type batchWorker struct {
	ctx        context.Context
	runner     *infra.SQLRunner
	logger     infra.Logger
	store      *storage.FileStore
	dispatcher *studio.Dispatcher
	reconciler *studio.Reconciler
}

var errNoBatchAvailable = errors.New("no batch available")

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	credStore := credentials.NewStore(runner)
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		keyFromStore, err := credStore.GeminiAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load gemini api key from store")
		} else {
			apiKey = keyFromStore
		}
	}
	if apiKey == "" {
		logger.Fatal().Msg("worker: no gemini api key configured, set GEMINI_API_KEY or store a credential")
	}

	client, err := genai.NewClient(genai.Options{
		APIKey:  apiKey,
		BaseURL: cfg.GeminiBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure gemini client")
	}

	historyStore := history.NewPgStore(runner)
	statsStore := history.NewPgStatsStore(runner)

	stamper := &watermark.Stamper{Load: func(key string) ([]byte, error) {
		return fileStore.Read(ctx, key)
	}}

	reconciler := &studio.Reconciler{
		History:   historyStore,
		Stats:     statsStore,
		Artifacts: fileStore,
		Watermark: stamper,
		Logger:    logger,
		OnAuthError: func(ctx context.Context) {
			if err := credStore.FlagReselect(ctx, credentials.ProviderGemini); err != nil {
				logger.Error().Err(err).Msg("worker: flag credential reselect")
			}
		},
	}

	worker := &batchWorker{
		ctx:        ctx,
		runner:     runner,
		logger:     logger,
		store:      fileStore,
		dispatcher: studio.NewDispatcher(client, client, logger),
		reconciler: reconciler,
	}

	// Entries left processing by a previous crash can never finish; close
	// them out before accepting new work.
	if n, err := historyStore.MarkInterrupted(ctx); err != nil {
		logger.Error().Err(err).Msg("worker: mark interrupted entries")
	} else if n > 0 {
		logger.Warn().Int64("entries", n).Msg("worker: closed interrupted entries")
	}
	if _, err := runner.Exec(ctx, sqlinline.QFailRunningBatches); err != nil {
		logger.Error().Err(err).Msg("worker: fail stale running batches")
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *batchWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		b, err := w.claimBatch()
		if err != nil {
			if errors.Is(err, errNoBatchAvailable) {
				time.Sleep(batchPollInterval)
				continue
			}
			w.logger.Error().Err(err).Msg("worker: failed to claim batch")
			time.Sleep(batchPollInterval)
			continue
		}

		w.handleBatch(b)
	}
}

func (w *batchWorker) claimBatch() (batch, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QClaimBatch)
	var (
		b                      batch
		settingsJSON, jobsJSON []byte
	)
	if err := row.Scan(&b.ID, &settingsJSON, &jobsJSON, &b.ProductKey, &b.ReferenceKey); err != nil {
		if infra.IsNoRows(err) {
			return batch{}, errNoBatchAvailable
		}
		return batch{}, err
	}
	if err := json.Unmarshal(settingsJSON, &b.Settings); err != nil {
		return batch{}, fmt.Errorf("decode batch %s settings: %w", b.ID, err)
	}
	if err := json.Unmarshal(jobsJSON, &b.Jobs); err != nil {
		return batch{}, fmt.Errorf("decode batch %s jobs: %w", b.ID, err)
	}
	return b, nil
}

func (w *batchWorker) handleBatch(b batch) {
	w.logger.Info().
		Str("batch_id", b.ID).
		Int("jobs", len(b.Jobs)).
		Str("model", string(b.Settings.Model)).
		Msg("worker: picked batch")

	product, err := w.loadBlob(b.ProductKey)
	if err != nil {
		w.failBatch(b, fmt.Sprintf("load product image: %v", err))
		return
	}
	var reference *genai.Blob
	if b.ReferenceKey != "" {
		ref, err := w.loadBlob(b.ReferenceKey)
		if err != nil {
			w.failBatch(b, fmt.Sprintf("load reference image: %v", err))
			return
		}
		reference = &ref
	}

	outcomes := w.dispatcher.Dispatch(w.ctx, studio.DispatchInput{
		Settings:  b.Settings,
		Jobs:      b.Jobs,
		Product:   product,
		Reference: reference,
	})

	result, err := w.reconciler.Reconcile(w.ctx, b.ID, b.Settings, outcomes)
	if err != nil {
		w.logger.Error().Err(err).Str("batch_id", b.ID).Msg("worker: reconcile failed")
	}

	status := "completed"
	if result.AllFailed() {
		status = "failed"
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QFinishBatch, b.ID, status); err != nil {
		w.logger.Error().Err(err).Str("batch_id", b.ID).Msg("worker: finish batch")
	}
}

// failBatch closes every entry of a batch that never reached dispatch.
func (w *batchWorker) failBatch(b batch, message string) {
	w.logger.Error().Str("batch_id", b.ID).Str("reason", message).Msg("worker: batch failed before dispatch")
	outcomes := make([]studio.JobOutcome, len(b.Jobs))
	for i, job := range b.Jobs {
		outcomes[i] = studio.JobOutcome{Job: job, Err: errors.New(message)}
	}
	if _, err := w.reconciler.Reconcile(w.ctx, b.ID, b.Settings, outcomes); err != nil {
		w.logger.Error().Err(err).Str("batch_id", b.ID).Msg("worker: reconcile failed")
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QFinishBatch, b.ID, "failed"); err != nil {
		w.logger.Error().Err(err).Str("batch_id", b.ID).Msg("worker: finish batch")
	}
}

func (w *batchWorker) loadBlob(key string) (genai.Blob, error) {
	data, err := w.store.Read(w.ctx, key)
	if err != nil {
		return genai.Blob{}, err
	}
	return genai.Blob{Data: data, MIME: mimeForKey(key)}, nil
}

func mimeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
