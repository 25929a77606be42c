package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamevault-backend/internal/middleware"
	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
)

type stubPostStore struct {
	posts     map[uuid.UUID]*models.Post
	updated   bool
	deleted   bool
	lastInput *models.PostInput
}

func (s *stubPostStore) ListFeed(ctx context.Context) ([]*models.Post, error) { return nil, nil }
func (s *stubPostStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return nil, nil
}

func (s *stubPostStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if p, ok := s.posts[id]; ok {
		return p, nil
	}
	return nil, repository.ErrPostNotFound
}

func (s *stubPostStore) Create(ctx context.Context, p *models.Post) error { return nil }

func (s *stubPostStore) Update(ctx context.Context, id uuid.UUID, in *models.PostInput) error {
	s.updated = true
	s.lastInput = in
	return nil
}

func (s *stubPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubPostStore) React(ctx context.Context, postID, userID uuid.UUID, kind string) error {
	return nil
}

type noopCleaner struct{}

func (noopCleaner) CleanupRemoved(ctx context.Context, oldURLs, newURLs []string) {}

func requestAs(method, path, body string, userID uuid.UUID, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestUpdatePost_NotOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	postID := uuid.New()

	store := &stubPostStore{posts: map[uuid.UUID]*models.Post{
		postID: {ID: postID, UserID: owner, Text: "original"},
	}}
	h := NewPostHandler(store, noopCleaner{})

	req := requestAs(http.MethodPut, "/api/posts/"+postID.String(), `{"text": "hijacked"}`,
		stranger, map[string]string{"id": postID.String()})
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if store.updated {
		t.Error("post was updated despite ownership check")
	}
}

func TestUpdatePost_Owner(t *testing.T) {
	owner := uuid.New()
	postID := uuid.New()

	store := &stubPostStore{posts: map[uuid.UUID]*models.Post{
		postID: {ID: postID, UserID: owner, Text: "original", Media: []string{}},
	}}
	h := NewPostHandler(store, noopCleaner{})

	req := requestAs(http.MethodPut, "/api/posts/"+postID.String(), `{"text": "edited"}`,
		owner, map[string]string{"id": postID.String()})
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if !store.updated {
		t.Error("post was not updated")
	}
}

func TestUpdatePost_TrimsText(t *testing.T) {
	owner := uuid.New()
	postID := uuid.New()

	store := &stubPostStore{posts: map[uuid.UUID]*models.Post{
		postID: {ID: postID, UserID: owner, Text: "original", Media: []string{}},
	}}
	h := NewPostHandler(store, noopCleaner{})

	req := requestAs(http.MethodPut, "/api/posts/"+postID.String(), `{"text": "  edited  "}`,
		owner, map[string]string{"id": postID.String()})
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if store.lastInput == nil || store.lastInput.Text != "edited" {
		t.Errorf("persisted text = %+v, want %q", store.lastInput, "edited")
	}
}

func TestDeletePost_NotOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	postID := uuid.New()

	store := &stubPostStore{posts: map[uuid.UUID]*models.Post{
		postID: {ID: postID, UserID: owner, Text: "mine"},
	}}
	h := NewPostHandler(store, noopCleaner{})

	req := requestAs(http.MethodDelete, "/api/posts/"+postID.String(), "",
		stranger, map[string]string{"id": postID.String()})
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if store.deleted {
		t.Error("post was deleted despite ownership check")
	}
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty post", `{}`, http.StatusBadRequest},
		{"whitespace text", `{"text": "   "}`, http.StatusBadRequest},
		{"non-cloudinary media", `{"media": ["https://evil.example.com/x.jpg"]}`, http.StatusBadRequest},
		{"bad youtube url", `{"youtubeUrls": ["https://vimeo.com/1"]}`, http.StatusBadRequest},
		{"text only", `{"text": "hello feed"}`, http.StatusCreated},
		{"cloudinary media only", `{"media": ["https://res.cloudinary.com/demo/image/upload/v1/uploads/a.jpg"]}`, http.StatusCreated},
		{"youtube only", `{"youtubeUrls": ["https://youtu.be/abc"]}`, http.StatusCreated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubPostStore{posts: map[uuid.UUID]*models.Post{}}
			h := NewPostHandler(store, noopCleaner{})

			req := requestAs(http.MethodPost, "/api/posts", tc.body, uuid.New(), nil)
			rr := httptest.NewRecorder()
			h.Create(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestUpdatePost_NotFound(t *testing.T) {
	store := &stubPostStore{posts: map[uuid.UUID]*models.Post{}}
	h := NewPostHandler(store, noopCleaner{})

	id := uuid.New()
	req := requestAs(http.MethodPut, "/api/posts/"+id.String(), `{"text": "x"}`,
		uuid.New(), map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
