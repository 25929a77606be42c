package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamevault-backend/internal/middleware"
	"gamevault-backend/internal/repository"
)

type LibraryHandler struct {
	orderRepo *repository.OrderRepository
}

func NewLibraryHandler(orderRepo *repository.OrderRepository) *LibraryHandler {
	return &LibraryHandler{orderRepo: orderRepo}
}

func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	keys, err := h.orderRepo.Library(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load library", r))
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *LibraryHandler) UseKey(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	keyID, err := uuid.Parse(chi.URLParam(r, "keyId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid key ID", r))
		return
	}

	if err := h.orderRepo.UseKey(r.Context(), userID, keyID); err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Key not found or already used", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to use key", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Key marked as used"})
}
