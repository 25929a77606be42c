package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamevault-backend/internal/middleware"
	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
)

type CartHandler struct {
	cartRepo  *repository.CartRepository
	gameRepo  *repository.GameRepository
	orderRepo *repository.OrderRepository
}

func NewCartHandler(cartRepo *repository.CartRepository, gameRepo *repository.GameRepository, orderRepo *repository.OrderRepository) *CartHandler {
	return &CartHandler{cartRepo: cartRepo, gameRepo: gameRepo, orderRepo: orderRepo}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	cart, err := h.cartRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load cart", r))
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	gameID, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid game ID", r))
		return
	}

	game, err := h.gameRepo.GetByID(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Game not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load game", r))
		return
	}

	if game.Stock <= 0 {
		writeJSON(w, http.StatusConflict, errorResp("OUT_OF_STOCK", "Game is out of stock", r))
		return
	}

	if err := h.cartRepo.Add(r.Context(), userID, gameID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add to cart", r))
		return
	}

	cart, err := h.cartRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load cart", r))
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	gameID, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid game ID", r))
		return
	}

	var req models.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.cartRepo.UpdateQuantity(r.Context(), userID, gameID, req.Quantity); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update cart", r))
		return
	}

	cart, err := h.cartRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load cart", r))
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	gameID, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid game ID", r))
		return
	}

	if err := h.cartRepo.Remove(r.Context(), userID, gameID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove from cart", r))
		return
	}

	cart, err := h.cartRepo.Get(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load cart", r))
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	result, err := h.orderRepo.Checkout(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, errorResp("EMPTY_CART", "Your cart is empty", r))
		case errors.Is(err, repository.ErrOutOfStock):
			writeJSON(w, http.StatusConflict, errorResp("OUT_OF_STOCK", err.Error(), r))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Checkout failed", r))
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
