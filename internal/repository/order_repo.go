package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamevault-backend/internal/models"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrOutOfStock  = errors.New("insufficient stock")
	ErrKeyNotFound = errors.New("game key not found")
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateKeyCode produces a retail-style key like "7KQ2X-9MWPT-C4RNH".
func generateKeyCode() (string, error) {
	buf := make([]byte, 15)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	for i, c := range buf {
		if i > 0 && i%5 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(keyAlphabet[int(c)%len(keyAlphabet)])
	}
	return b.String(), nil
}

// Checkout converts the user's cart into an order inside a single
// transaction: stock is checked and decremented under row locks, keys are
// minted per unit, and the cart is cleared. ErrOutOfStock aborts the whole
// order if any line cannot be covered.
func (r *OrderRepository) Checkout(ctx context.Context, userID uuid.UUID) (*models.CheckoutResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT ci.game_id, ci.quantity, g.title, g.price, g.cover_media, g.stock
		FROM cart_items ci
		JOIN games g ON g.id = ci.game_id
		WHERE ci.user_id = $1
		FOR UPDATE OF g`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}

	type line struct {
		gameID     uuid.UUID
		quantity   int
		title      string
		price      float64
		coverMedia string
		stock      int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.gameID, &l.quantity, &l.title, &l.price, &l.coverMedia, &l.stock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart lines: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var total float64
	for _, l := range lines {
		if l.stock < l.quantity {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, l.title)
		}
		total += l.price * float64(l.quantity)
	}

	orderID := uuid.New()
	now := time.Now()
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, total, created_at) VALUES ($1, $2, $3, $4)`,
		orderID, userID, total, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result := &models.CheckoutResult{OrderID: orderID, Total: total, Keys: []models.GameKey{}}
	for _, l := range lines {
		_, err = tx.Exec(ctx,
			`UPDATE games SET stock = stock - $2 WHERE id = $1`, l.gameID, l.quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		for i := 0; i < l.quantity; i++ {
			code, err := generateKeyCode()
			if err != nil {
				return nil, err
			}

			key := models.GameKey{
				ID:          uuid.New(),
				GameID:      l.gameID,
				GameTitle:   l.title,
				CoverMedia:  l.coverMedia,
				Code:        code,
				PurchasedAt: now,
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO game_keys (id, order_id, user_id, game_id, code, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				key.ID, orderID, userID, l.gameID, code, now)
			if err != nil {
				return nil, fmt.Errorf("failed to store game key: %w", err)
			}
			result.Keys = append(result.Keys, key)
		}
	}

	_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}
	return result, nil
}

// Library lists every key the user has purchased, newest first.
func (r *OrderRepository) Library(ctx context.Context, userID uuid.UUID) ([]models.GameKey, error) {
	query := `
		SELECT k.id, k.game_id, g.title, g.cover_media, k.code, k.used_at, k.created_at
		FROM game_keys k
		JOIN games g ON g.id = k.game_id
		WHERE k.user_id = $1
		ORDER BY k.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	defer rows.Close()

	keys := []models.GameKey{}
	for rows.Next() {
		var k models.GameKey
		if err := rows.Scan(&k.ID, &k.GameID, &k.GameTitle, &k.CoverMedia, &k.Code, &k.UsedAt, &k.PurchasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// UseKey marks an unused key as redeemed. It only touches keys owned by the
// caller, so a miss is reported as not found.
func (r *OrderRepository) UseKey(ctx context.Context, userID, keyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE game_keys SET used_at = NOW()
		WHERE id = $1 AND user_id = $2 AND used_at IS NULL`, keyID, userID)
	if err != nil {
		return fmt.Errorf("failed to use game key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}
