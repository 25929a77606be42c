package models

import (
	"time"

	"github.com/google/uuid"
)

type CartItem struct {
	GameID     uuid.UUID `json:"game_id"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	CoverMedia string    `json:"coverMedia"`
	Quantity   int       `json:"quantity"`
	Stock      int       `json:"stock"`
}

type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type GameKey struct {
	ID          uuid.UUID  `json:"id"`
	GameID      uuid.UUID  `json:"game_id"`
	GameTitle   string     `json:"game_title"`
	CoverMedia  string     `json:"coverMedia"`
	Code        string     `json:"code"`
	UsedAt      *time.Time `json:"used_at"`
	PurchasedAt time.Time  `json:"purchased_at"`
}

type CheckoutResult struct {
	OrderID uuid.UUID `json:"order_id"`
	Total   float64   `json:"total"`
	Keys    []GameKey `json:"keys"`
}
