package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"renderlab/internal/http/handlers"
	"renderlab/internal/infra"
	"renderlab/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/estimate", app.Estimate)
	r.Post("/v1/uploads", app.Upload)

	r.Route("/v1/batches", func(r chi.Router) {
		r.Post("/", app.SubmitBatch)
		r.Get("/{id}", app.BatchStatus)
		r.Get("/{id}/download", app.BatchDownload)
	})

	r.Route("/v1/history", func(r chi.Router) {
		r.Get("/", app.HistoryList)
		r.Delete("/", app.HistoryClear)
		r.Get("/{id}", app.HistoryGet)
		r.Delete("/{id}", app.HistoryDelete)
	})

	r.Route("/v1/stats", func(r chi.Router) {
		r.Get("/", app.StatsSummary)
		r.Post("/reset", app.StatsReset)
	})

	r.Route("/v1/credentials/gemini", func(r chi.Router) {
		r.Get("/", app.CredentialStatus)
		r.Put("/", app.CredentialUpdate)
	})

	if app.Files != nil {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Files.BasePath())))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	return r
}
