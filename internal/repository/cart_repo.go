package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamevault-backend/internal/models"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	query := `
		SELECT ci.game_id, g.title, g.price, g.cover_media, ci.quantity, g.stock
		FROM cart_items ci
		JOIN games g ON g.id = ci.game_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	defer rows.Close()

	cart := &models.Cart{Items: []models.CartItem{}}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.GameID, &item.Title, &item.Price, &item.CoverMedia, &item.Quantity, &item.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
		cart.Total += item.Price * float64(item.Quantity)
	}
	return cart, rows.Err()
}

// Add inserts the game with quantity 1, or bumps the quantity if it is
// already in the cart.
func (r *CartRepository) Add(ctx context.Context, userID, gameID uuid.UUID) error {
	query := `
		INSERT INTO cart_items (user_id, game_id, quantity, added_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id, game_id) DO UPDATE SET quantity = cart_items.quantity + 1`

	_, err := r.pool.Exec(ctx, query, userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, gameID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, gameID)
	}

	query := `UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND game_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, gameID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, gameID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND game_id = $2`, userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}
