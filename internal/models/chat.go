package models

import "time"

// ChatMessage is one turn of an AI assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// GameContext is the public-safe projection of a catalog game that may be
// shown to the language model. Exactly these five fields; nothing internal
// (stock, ids, timestamps) may ever be added here.
type GameContext struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Genre       string  `json:"genre"`
	Platform    string  `json:"platform"`
	Description string  `json:"description"`
}

// PostContext is the public-safe projection of a newsfeed post. Media and
// YouTube links are reduced to counts; reactions and comments are omitted
// entirely.
type PostContext struct {
	Text         string     `json:"text"`
	MediaCount   int        `json:"mediaCount"`
	YouTubeCount int        `json:"youtubeCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	Author       PostAuthor `json:"author"`
}

type PostAuthor struct {
	Name string `json:"name"`
}

// ChatSources lists the redacted records the assistant's reply was grounded
// on, for client-side transparency.
type ChatSources struct {
	Games []GameContext `json:"games"`
	Posts []PostContext `json:"posts"`
}

type ChatResponse struct {
	Reply   ChatMessage `json:"reply"`
	Sources ChatSources `json:"sources"`
}
