package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamevault-backend/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// postSelect joins the author name, aggregated reaction counts and the
// comment count onto each post row.
const postSelect = `
	SELECT p.id, p.user_id, u.name, p.text, p.media, p.youtube_urls,
		COALESCE(rc.reactions, '{}'::jsonb),
		COALESCE(cc.count, 0),
		p.created_at, p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN (
		SELECT post_id, jsonb_object_agg(kind, cnt) AS reactions
		FROM (
			SELECT post_id, kind, COUNT(*) AS cnt
			FROM post_reactions
			GROUP BY post_id, kind
		) k
		GROUP BY post_id
	) rc ON rc.post_id = p.id
	LEFT JOIN (
		SELECT post_id, COUNT(*) AS count
		FROM comments
		GROUP BY post_id
	) cc ON cc.post_id = p.id`

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.UserID, &p.AuthorName, &p.Text, &p.Media, &p.YouTubeURLs,
		&p.Reactions, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Reactions == nil {
		p.Reactions = map[string]int{}
	}
	return &p, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) ListFeed(ctx context.Context) ([]*models.Post, error) {
	return r.queryPosts(ctx, postSelect+` ORDER BY p.created_at DESC`)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return r.queryPosts(ctx, postSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC`, userID)
}

// ListLatest returns the newest posts, capped at limit. Used to fill the
// assistant's newsfeed context.
func (r *PostRepository) ListLatest(ctx context.Context, limit int) ([]*models.Post, error) {
	return r.queryPosts(ctx, postSelect+` ORDER BY p.created_at DESC LIMIT $1`, limit)
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return p, nil
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, text, media, youtube_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Text, p.Media, p.YouTubeURLs, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, in *models.PostInput) error {
	query := `
		UPDATE posts
		SET text = $2, media = $3, youtube_urls = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, in.Text, in.Media, in.YouTubeURLs, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// React upserts the caller's reaction on a post. An empty kind removes any
// existing reaction instead.
func (r *PostRepository) React(ctx context.Context, postID, userID uuid.UUID, kind string) error {
	if kind == "" {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove reaction: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO post_reactions (post_id, user_id, kind, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (post_id, user_id) DO UPDATE SET kind = EXCLUDED.kind, created_at = NOW()`

	_, err := r.pool.Exec(ctx, query, postID, userID, kind)
	if err != nil {
		return fmt.Errorf("failed to set reaction: %w", err)
	}
	return nil
}
