package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
	"gamevault-backend/internal/services"
)

type AdminHandler struct {
	pool        *pgxpool.Pool
	gameRepo    *repository.GameRepository
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	media       *services.MediaService
}

func NewAdminHandler(pool *pgxpool.Pool, gameRepo *repository.GameRepository, postRepo *repository.PostRepository, commentRepo *repository.CommentRepository, media *services.MediaService) *AdminHandler {
	return &AdminHandler{
		pool:        pool,
		gameRepo:    gameRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		media:       media,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var stats struct {
		Users    int     `json:"users"`
		Games    int     `json:"games"`
		Posts    int     `json:"posts"`
		Comments int     `json:"comments"`
		Orders   int     `json:"orders"`
		Revenue  float64 `json:"revenue"`
	}

	err := h.pool.QueryRow(r.Context(), `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM comments),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total), 0) FROM orders)`).Scan(
		&stats.Users, &stats.Games, &stats.Posts, &stats.Comments, &stats.Orders, &stats.Revenue)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load dashboard", r))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var in models.GameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateGameInput(&in); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	now := time.Now()
	game := &models.Game{
		ID:             uuid.New(),
		Title:          in.Title,
		Price:          in.Price,
		Developer:      in.Developer,
		SizeGB:         in.SizeGB,
		Platform:       in.Platform,
		Genre:          in.Genre,
		Description:    in.Description,
		CoverMedia:     in.CoverMedia,
		Screenshots:    in.Screenshots,
		TrailerURL:     in.TrailerURL,
		Modes:          in.Modes,
		Languages:      in.Languages,
		OnlineRequired: in.OnlineRequired,
		Stock:          in.Stock,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if game.Screenshots == nil {
		game.Screenshots = []string{}
	}
	if game.Modes == nil {
		game.Modes = []string{}
	}
	if game.Languages == nil {
		game.Languages = []string{}
	}

	if err := h.gameRepo.Create(r.Context(), game); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create game", r))
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

func (h *AdminHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid game ID", r))
		return
	}

	var in models.GameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateGameInput(&in); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}
	if in.Screenshots == nil {
		in.Screenshots = []string{}
	}
	if in.Modes == nil {
		in.Modes = []string{}
	}
	if in.Languages == nil {
		in.Languages = []string{}
	}

	old, err := h.gameRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Game not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load game", r))
		return
	}

	game, err := h.gameRepo.Update(r.Context(), id, &in)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update game", r))
		return
	}

	// Clean up media assets the update dropped.
	oldMedia := services.CollectGameMedia(old.CoverMedia, old.Screenshots)
	newMedia := services.CollectGameMedia(game.CoverMedia, game.Screenshots)
	go h.media.CleanupRemoved(context.Background(), oldMedia, newMedia)

	writeJSON(w, http.StatusOK, game)
}

func (h *AdminHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
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

	if err := h.gameRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete game", r))
		return
	}

	media := services.CollectGameMedia(game.CoverMedia, game.Screenshots)
	go h.media.CleanupRemoved(context.Background(), media, nil)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Game deleted"})
}

// DeletePost is the moderation path: any post may be removed along with its
// media assets.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid post ID", r))
		return
	}

	post, err := h.postRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Post not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}

	if err := h.postRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete post", r))
		return
	}

	go h.media.CleanupRemoved(context.Background(), post.Media, nil)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid comment ID", r))
		return
	}

	if err := h.commentRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Comment not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete comment", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

func validateGameInput(in *models.GameInput) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	}
	if in.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	if in.Stock < 0 {
		fields["stock"] = "Stock cannot be negative"
	}
	if in.CoverMedia != "" && !services.IsCloudinaryURL(in.CoverMedia) {
		fields["coverMedia"] = "Cover must be an uploaded media URL"
	}
	for _, s := range in.Screenshots {
		if s != "" && !services.IsCloudinaryURL(s) {
			fields["screenshots"] = "Screenshots must be uploaded media URLs"
			break
		}
	}
	return fields
}
