package handlers

import (
	"net/http"

	"renderlab/internal/studio"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := a.StatsRepo.Get(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats: load")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	costVND := studio.VNDCost(stats.TotalCostUSD)
	a.json(w, http.StatusOK, map[string]any{
		"total_renders":       stats.TotalRenders,
		"total_videos":        stats.TotalVideos,
		"total_input_tokens":  stats.TotalInputTokens,
		"total_output_tokens": stats.TotalOutputTokens,
		"total_cost_usd":      stats.TotalCostUSD,
		"total_cost_vnd":      costVND,
		"cost_vnd_display":    FormatVND(costVND),
		"model_counts":        stats.ModelCounts,
		"updated_at":          stats.UpdatedAt,
	})
}

func (a *App) StatsReset(w http.ResponseWriter, r *http.Request) {
	if err := a.StatsRepo.Reset(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("stats: reset")
		a.error(w, http.StatusInternalServerError, "internal", "failed to reset stats")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "reset"})
}
