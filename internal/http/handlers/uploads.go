package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"renderlab/internal/history"
)

const maxUploadBytes = 15 << 20

var allowedUploadExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Upload accepts a product, reference or logo image and stores it under a
// fresh key. The returned key is what batch submissions reference.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mime, ok := allowedUploadExtensions[ext]
	if !ok {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_media", "only png, jpeg and webp uploads are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}
	if len(data) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "empty upload")
		return
	}

	id := uuid.NewString()
	key := fmt.Sprintf("uploads/%s%s", id, ext)
	storedKey, err := a.Files.Write(r.Context(), key, data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("upload: persist failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store upload")
		return
	}

	entry := history.Entry{
		ID:         id,
		Status:     history.StatusIdle,
		RenderType: history.RenderImage,
		StorageKey: storedKey,
		MIME:       mime,
	}
	if err := a.History.Insert(r.Context(), []history.Entry{entry}); err != nil {
		a.Logger.Error().Err(err).Str("key", storedKey).Msg("upload: record history entry")
	}

	a.json(w, http.StatusCreated, map[string]any{
		"id":   id,
		"key":  storedKey,
		"url":  a.assetURL(storedKey),
		"mime": mime,
		"size": len(data),
	})
}
