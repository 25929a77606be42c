package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gamevault-backend/internal/models"
	"gamevault-backend/internal/services"
)

const maxUploadSize = 50 << 20 // 50 MB

type UploadHandler struct {
	media *services.MediaService
}

func NewUploadHandler(media *services.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

// Upload receives one multipart file and forwards it to the media host.
// Regular user uploads land in "uploads"; the admin game route sorts assets
// into "games/cover" or "games/screenshots" based on the type query param.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "File too large or invalid form", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file uploaded", r))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Only image and video files are allowed", r))
		return
	}

	result, err := h.media.Upload(r.Context(), file, contentType, h.folderFor(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Upload failed", r))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *UploadHandler) folderFor(r *http.Request) string {
	if !strings.Contains(r.URL.Path, "/admin/upload-game") {
		return "uploads"
	}
	if r.URL.Query().Get("type") == "screenshot" {
		return "games/screenshots"
	}
	return "games/cover"
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "path required", r))
		return
	}

	if err := h.media.Delete(r.Context(), path); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Delete failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
