package handlers

import (
	"encoding/json"
	"net/http"

	"renderlab/internal/infra/credentials"
)

func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	cred, err := a.Credentials.Credential(r.Context(), credentials.ProviderGemini)
	if err != nil {
		a.Logger.Error().Err(err).Msg("credentials: load")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load credential")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"provider":       credentials.ProviderGemini,
		"configured":     cred.Token != "",
		"needs_reselect": cred.NeedsReselect,
	})
}

type credentialUpdateRequest struct {
	APIKey string `json:"api_key"`
}

func (a *App) CredentialUpdate(w http.ResponseWriter, r *http.Request) {
	var req credentialUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Credentials.SetGeminiAPIKey(r.Context(), req.APIKey); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "updated"})
}
