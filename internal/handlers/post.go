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

	"gamevault-backend/internal/middleware"
	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
	"gamevault-backend/internal/services"
)

// postStore is the slice of the post repository this handler needs; tests
// provide a stub.
type postStore interface {
	ListFeed(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, p *models.Post) error
	Update(ctx context.Context, id uuid.UUID, in *models.PostInput) error
	Delete(ctx context.Context, id uuid.UUID) error
	React(ctx context.Context, postID, userID uuid.UUID, kind string) error
}

type mediaCleaner interface {
	CleanupRemoved(ctx context.Context, oldURLs, newURLs []string)
}

type PostHandler struct {
	posts postStore
	media mediaCleaner
}

func NewPostHandler(posts postStore, media mediaCleaner) *PostHandler {
	return &PostHandler{posts: posts, media: media}
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListFeed(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load feed", r))
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	posts, err := h.posts.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load posts", r))
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var in models.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validatePostInput(&in); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	now := time.Now()
	post := &models.Post{
		ID:          uuid.New(),
		UserID:      userID,
		Text:        strings.TrimSpace(in.Text),
		Media:       in.Media,
		YouTubeURLs: in.YouTubeURLs,
		Reactions:   map[string]int{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if post.Media == nil {
		post.Media = []string{}
	}
	if post.YouTubeURLs == nil {
		post.YouTubeURLs = []string{}
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create post", r))
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid post ID", r))
		return
	}

	var in models.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validatePostInput(&in); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Media == nil {
		in.Media = []string{}
	}
	if in.YouTubeURLs == nil {
		in.YouTubeURLs = []string{}
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Post not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}

	if post.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You can only edit your own posts", r))
		return
	}

	if err := h.posts.Update(r.Context(), id, &in); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update post", r))
		return
	}

	go h.media.CleanupRemoved(context.Background(), post.Media, in.Media)

	updated, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid post ID", r))
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Post not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}

	if post.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You can only delete your own posts", r))
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete post", r))
		return
	}

	go h.media.CleanupRemoved(context.Background(), post.Media, nil)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

func (h *PostHandler) React(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid post ID", r))
		return
	}

	var req models.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if _, err := h.posts.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Post not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}

	if err := h.posts.React(r.Context(), id, userID, strings.TrimSpace(req.Kind)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save reaction", r))
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load post", r))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// validatePostInput enforces the content rule (at least one of text, media or
// YouTube links) and that every URL is either an uploaded asset or a YouTube
// link.
func validatePostInput(in *models.PostInput) map[string]string {
	fields := make(map[string]string)

	hasText := strings.TrimSpace(in.Text) != ""
	if !hasText && len(in.Media) == 0 && len(in.YouTubeURLs) == 0 {
		fields["text"] = "A post needs text, media, or a YouTube link"
	}

	for _, u := range in.Media {
		if !services.IsCloudinaryURL(u) {
			fields["media"] = "Media must be uploaded through the upload endpoint"
			break
		}
	}
	for _, u := range in.YouTubeURLs {
		if !services.IsYouTubeURL(u) {
			fields["youtubeUrls"] = "Invalid YouTube URL"
			break
		}
	}
	return fields
}
