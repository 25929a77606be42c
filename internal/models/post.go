package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	AuthorName   string         `json:"author_name"`
	Text         string         `json:"text"`
	Media        []string       `json:"media"`
	YouTubeURLs  []string       `json:"youtubeUrls"`
	Reactions    map[string]int `json:"reactions"`
	CommentCount int            `json:"comment_count"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// PostInput is the create/update payload. A post must carry at least one of
// text, media, or youtubeUrls.
type PostInput struct {
	Text        string   `json:"text"`
	Media       []string `json:"media"`
	YouTubeURLs []string `json:"youtubeUrls"`
}

// ReactRequest sets the caller's reaction on a post. An empty kind removes it.
type ReactRequest struct {
	Kind string `json:"kind"`
}

type Comment struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentInput struct {
	Text string `json:"text"`
}
