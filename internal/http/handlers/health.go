package handlers

import (
	"net/http"

	"renderlab/internal/sqlinline"
)

// Health reports liveness plus database reachability.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QPing).Scan(&one); err != nil {
		a.json(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
