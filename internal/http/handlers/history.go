package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"renderlab/internal/history"
)

func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := a.History.List(r.Context(), limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("history: list")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, a.historyItem(e))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) HistoryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := a.History.Get(r.Context(), id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "history entry not found")
		return
	}
	a.json(w, http.StatusOK, a.historyItem(entry))
}

func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.History.Delete(r.Context(), id); err != nil {
		a.Logger.Error().Err(err).Str("entry_id", id).Msg("history: delete")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete entry")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) HistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := a.History.Clear(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("history: clear")
		a.error(w, http.StatusInternalServerError, "internal", "failed to clear history")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (a *App) historyItem(e history.Entry) map[string]any {
	return map[string]any{
		"entry": e,
		"url":   a.assetURL(e.StorageKey),
	}
}
