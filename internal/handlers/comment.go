package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamevault-backend/internal/middleware"
	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
)

type CommentHandler struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
}

func NewCommentHandler(commentRepo *repository.CommentRepository, postRepo *repository.PostRepository) *CommentHandler {
	return &CommentHandler{commentRepo: commentRepo, postRepo: postRepo}
}

func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid post ID", r))
		return
	}

	comments, err := h.commentRepo.ListByPost(r.Context(), postID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load comments", r))
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid post ID", r))
		return
	}

	var in models.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"text": "Comment text is required"}, r))
		return
	}

	if _, err := h.postRepo.GetByID(r.Context(), postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Post not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := h.commentRepo.Create(r.Context(), comment); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create comment", r))
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid comment ID", r))
		return
	}

	var in models.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"text": "Comment text is required"}, r))
		return
	}

	comment, err := h.commentRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Comment not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load comment", r))
		return
	}

	if comment.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You can only edit your own comments", r))
		return
	}

	if err := h.commentRepo.Update(r.Context(), id, text); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update comment", r))
		return
	}

	comment.Text = text
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid comment ID", r))
		return
	}

	comment, err := h.commentRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Comment not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load comment", r))
		return
	}

	if comment.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You can only delete your own comments", r))
		return
	}

	if err := h.commentRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete comment", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
