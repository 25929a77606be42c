package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamevault-backend/internal/repository"
)

type GameHandler struct {
	gameRepo *repository.GameRepository
}

func NewGameHandler(gameRepo *repository.GameRepository) *GameHandler {
	return &GameHandler{gameRepo: gameRepo}
}

func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameRepo.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load games", r))
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid game ID", r))
		return
	}

	game, err := h.gameRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Game not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load game", r))
		return
	}
	writeJSON(w, http.StatusOK, game)
}
