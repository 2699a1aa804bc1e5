package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"renderlab/internal/history"
	"renderlab/internal/infra"
	"renderlab/internal/infra/credentials"
	"renderlab/internal/storage"
)

// App bundles the dependencies every handler needs.
type App struct {
	SQL            infra.SQLExecutor
	Logger         zerolog.Logger
	History        history.Store
	StatsRepo      history.StatsStore
	Files          *storage.FileStore
	Credentials    *credentials.Store
	StorageBaseURL string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (a *App) assetURL(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	return a.StorageBaseURL + "/" + storageKey
}
