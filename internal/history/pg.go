package history

import (
	"context"
	"fmt"

	"renderlab/internal/infra"
	"renderlab/internal/sqlinline"
)

// PgStore implements Store on PostgreSQL through the inline SQL runner.
type PgStore struct {
	sql infra.SQLExecutor
}

var _ Store = (*PgStore)(nil)

func NewPgStore(sql infra.SQLExecutor) *PgStore {
	return &PgStore{sql: sql}
}

func (s *PgStore) Insert(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = StatusProcessing
		}
		if _, err := s.sql.Exec(
			ctx,
			sqlinline.QInsertHistoryEntry,
			e.ID,
			e.BatchID,
			status,
			e.RenderType,
			e.Model,
			e.Prompt,
			e.Settings,
			e.Seed,
			e.StorageKey,
			e.MIME,
			e.Cost.EstInputTokens,
			e.Cost.EstOutputTokens,
			e.Cost.EstCostUSD,
		); err != nil {
			return fmt.Errorf("insert history entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *PgStore) Complete(ctx context.Context, id, storageKey, mime string, cost CostData) error {
	_, err := s.sql.Exec(
		ctx,
		sqlinline.QCompleteHistoryEntry,
		id,
		storageKey,
		mime,
		cost.ActualInputTokens,
		cost.ActualOutputTokens,
		cost.ActualCostUSD,
		cost.VariancePct,
	)
	return err
}

func (s *PgStore) Fail(ctx context.Context, id, message string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QFailHistoryEntry, id, message)
	return err
}

// MarkInterrupted fails every entry still marked processing. Called once at
// worker startup so a crash mid-batch never leaves entries spinning forever.
func (s *PgStore) MarkInterrupted(ctx context.Context) (int64, error) {
	tag, err := s.sql.Exec(ctx, sqlinline.QMarkInterruptedHistory)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PgStore) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.sql.Query(ctx, sqlinline.QListHistory, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PgStore) Get(ctx context.Context, id string) (Entry, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QGetHistoryEntry, id)
	return scanEntry(row.Scan)
}

func (s *PgStore) ListByBatch(ctx context.Context, batchID string) ([]Entry, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListHistoryByBatch, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PgStore) Delete(ctx context.Context, id string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteHistoryEntry, id)
	return err
}

func (s *PgStore) Clear(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QClearHistory)
	return err
}

func scanEntry(scan func(dest ...any) error) (Entry, error) {
	var e Entry
	err := scan(
		&e.ID,
		&e.BatchID,
		&e.Status,
		&e.RenderType,
		&e.Model,
		&e.Prompt,
		&e.Settings,
		&e.Seed,
		&e.StorageKey,
		&e.MIME,
		&e.ErrorMessage,
		&e.Cost.EstInputTokens,
		&e.Cost.EstOutputTokens,
		&e.Cost.EstCostUSD,
		&e.Cost.ActualInputTokens,
		&e.Cost.ActualOutputTokens,
		&e.Cost.ActualCostUSD,
		&e.Cost.VariancePct,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

// PgStatsStore implements StatsStore on the single-row studio_stats table.
type PgStatsStore struct {
	sql infra.SQLExecutor
}

var _ StatsStore = (*PgStatsStore)(nil)

func NewPgStatsStore(sql infra.SQLExecutor) *PgStatsStore {
	return &PgStatsStore{sql: sql}
}

func (s *PgStatsStore) Increment(ctx context.Context, delta StatsDelta) error {
	if delta.Zero() {
		return nil
	}
	_, err := s.sql.Exec(
		ctx,
		sqlinline.QIncrementStats,
		delta.Renders,
		delta.Videos,
		delta.InputTokens,
		delta.OutputTokens,
		delta.CostUSD,
		delta.Model,
		delta.Renders,
	)
	return err
}

func (s *PgStatsStore) Get(ctx context.Context) (Stats, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QGetStats)
	var st Stats
	err := row.Scan(
		&st.TotalRenders,
		&st.TotalVideos,
		&st.TotalInputTokens,
		&st.TotalOutputTokens,
		&st.TotalCostUSD,
		&st.ModelCounts,
		&st.UpdatedAt,
	)
	if infra.IsNoRows(err) {
		return Stats{}, nil
	}
	return st, err
}

func (s *PgStatsStore) Reset(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QResetStats)
	return err
}
