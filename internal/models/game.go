package models

import (
	"time"

	"github.com/google/uuid"
)

type Game struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Price          float64   `json:"price"`
	Developer      string    `json:"developer"`
	SizeGB         float64   `json:"sizeGB"`
	Platform       string    `json:"platform"`
	Genre          string    `json:"genre"`
	Description    string    `json:"description"`
	CoverMedia     string    `json:"coverMedia"`
	Screenshots    []string  `json:"screenshots"`
	TrailerURL     string    `json:"trailerUrl"`
	Modes          []string  `json:"modes"`
	Languages      []string  `json:"languages"`
	OnlineRequired bool      `json:"onlineRequired"`
	Stock          int       `json:"stock"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GameInput is the admin create/update payload.
type GameInput struct {
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	Developer      string   `json:"developer"`
	SizeGB         float64  `json:"sizeGB"`
	Platform       string   `json:"platform"`
	Genre          string   `json:"genre"`
	Description    string   `json:"description"`
	CoverMedia     string   `json:"coverMedia"`
	Screenshots    []string `json:"screenshots"`
	TrailerURL     string   `json:"trailerUrl"`
	Modes          []string `json:"modes"`
	Languages      []string `json:"languages"`
	OnlineRequired bool     `json:"onlineRequired"`
	Stock          int      `json:"stock"`
}
