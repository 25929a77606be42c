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

var ErrGameNotFound = errors.New("game not found")

const gameColumns = `id, title, price, developer, size_gb, platform, genre, description,
	cover_media, screenshots, trailer_url, modes, languages, online_required, stock,
	created_at, updated_at`

type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(
		&g.ID, &g.Title, &g.Price, &g.Developer, &g.SizeGB, &g.Platform, &g.Genre,
		&g.Description, &g.CoverMedia, &g.Screenshots, &g.TrailerURL, &g.Modes,
		&g.Languages, &g.OnlineRequired, &g.Stock, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GameRepository) List(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []*models.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListLatest returns the newest games, capped at limit. Used to fill the
// assistant's catalog context.
func (r *GameRepository) ListLatest(ctx context.Context, limit int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest games: %w", err)
	}
	defer rows.Close()

	games := []*models.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// FindByTitle does a case-insensitive partial match against the catalog and
// returns the first hit. ErrGameNotFound signals a clean miss.
func (r *GameRepository) FindByTitle(ctx context.Context, name string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE title ILIKE '%' || $1 || '%' LIMIT 1`

	g, err := scanGame(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to find game by title: %w", err)
	}
	return g, nil
}

func (r *GameRepository) Create(ctx context.Context, g *models.Game) error {
	query := `
		INSERT INTO games (id, title, price, developer, size_gb, platform, genre, description,
			cover_media, screenshots, trailer_url, modes, languages, online_required, stock,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		g.ID, g.Title, g.Price, g.Developer, g.SizeGB, g.Platform, g.Genre, g.Description,
		g.CoverMedia, g.Screenshots, g.TrailerURL, g.Modes, g.Languages, g.OnlineRequired,
		g.Stock, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *GameRepository) Update(ctx context.Context, id uuid.UUID, in *models.GameInput) (*models.Game, error) {
	query := `
		UPDATE games
		SET title = $2, price = $3, developer = $4, size_gb = $5, platform = $6, genre = $7,
			description = $8, cover_media = $9, screenshots = $10, trailer_url = $11,
			modes = $12, languages = $13, online_required = $14, stock = $15, updated_at = $16
		WHERE id = $1
		RETURNING ` + gameColumns

	g, err := scanGame(r.pool.QueryRow(ctx, query,
		id, in.Title, in.Price, in.Developer, in.SizeGB, in.Platform, in.Genre,
		in.Description, in.CoverMedia, in.Screenshots, in.TrailerURL, in.Modes,
		in.Languages, in.OnlineRequired, in.Stock, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	return g, nil
}

func (r *GameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}
