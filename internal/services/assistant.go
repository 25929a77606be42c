package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
)

// Retrieval limits and serialization bounds of the assistant pipeline. These
// are fixed, not configurable.
const (
	latestPostsLimit   = 5
	fillerGamesLimit   = 4
	catalogSampleLimit = 6

	gameDescriptionLimit = 160
	postTextLimit        = 180

	chatTemperature   = 0.6
	completionTimeout = 30 * time.Second
)

const degradeMessage = "⚠️ AI is unavailable right now. Please try again in a moment."

const systemPolicy = "You are the AI assistant for **GameVault**.\n\n" +
	"RULES:\n" +
	"- Use ONLY the provided database context.\n" +
	"- Recommend ONLY from the provided shop catalog list.\n" +
	"- If a game is not in the catalog context, do NOT invent details; say it’s not available.\n" +
	"- For posts:\n" +
	"  • mediaCount > 0 → post HAS media\n" +
	"  • mediaCount = 0 → text-only post\n" +
	"- NEVER guess or assume media.\n" +
	"- You may mention post author names (public).\n" +
	"- NEVER talk about likes, comments, or reactions.\n" +
	"- If asked about likes/comments/reactions → reply exactly: 'That requires login, I can’t access that.'\n"

// intent is the classified purpose of the latest user message.
type intent int

const (
	intentGeneral intent = iota
	intentPosts
	intentGame
)

// gameCatalog is the read-only catalog surface the assistant needs.
type gameCatalog interface {
	ListLatest(ctx context.Context, limit int) ([]*models.Game, error)
	FindByTitle(ctx context.Context, name string) (*models.Game, error)
}

// postFeed is the read-only newsfeed surface the assistant needs.
type postFeed interface {
	ListLatest(ctx context.Context, limit int) ([]*models.Post, error)
}

// completionClient is the slice of the language-model client the assistant
// uses. Satisfied by *openai.LLM; tests substitute a fake.
type completionClient interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type AssistantService struct {
	games gameCatalog
	posts postFeed
	llm   completionClient
}

func NewAssistantService(games gameCatalog, posts postFeed, llm completionClient) *AssistantService {
	return &AssistantService{games: games, posts: posts, llm: llm}
}

// Chat runs the grounded pipeline: classify the latest user message, retrieve
// a bounded slice of catalog/newsfeed records, redact them into a context
// block, and make one completion call. It never returns an error; any
// retrieval or provider failure degrades to a fixed apology reply.
func (s *AssistantService) Chat(ctx context.Context, messages []models.ChatMessage) *models.ChatResponse {
	resp, err := s.chat(ctx, messages)
	if err != nil {
		log.Printf("✗ AI service error: %v", err)
		return &models.ChatResponse{
			Reply:   models.ChatMessage{Role: "assistant", Content: degradeMessage},
			Sources: emptySources(),
		}
	}
	return resp
}

func (s *AssistantService) chat(ctx context.Context, messages []models.ChatMessage) (*models.ChatResponse, error) {
	userText := strings.TrimSpace(lastUserText(messages))

	var rawGames []*models.Game
	var rawPosts []*models.Post
	var err error

	switch classifyIntent(userText) {
	case intentPosts:
		rawPosts, err = s.posts.ListLatest(ctx, latestPostsLimit)
		if err != nil {
			return nil, err
		}
		rawGames, err = s.games.ListLatest(ctx, fillerGamesLimit)
		if err != nil {
			return nil, err
		}

	case intentGame:
		gameName := extractGameName(userText)
		if gameName == "" {
			rawGames, err = s.games.ListLatest(ctx, catalogSampleLimit)
			if err != nil {
				return nil, err
			}
			break
		}

		found, err := s.games.FindByTitle(ctx, gameName)
		if err != nil {
			if errors.Is(err, repository.ErrGameNotFound) {
				// Skip the completion call entirely rather than let the
				// model speculate about a title we do not carry.
				return &models.ChatResponse{
					Reply:   models.ChatMessage{Role: "assistant", Content: notInCatalogMessage(gameName)},
					Sources: emptySources(),
				}, nil
			}
			return nil, err
		}
		rawGames = []*models.Game{found}

	default:
		rawGames, err = s.games.ListLatest(ctx, catalogSampleLimit)
		if err != nil {
			return nil, err
		}
	}

	games := make([]models.GameContext, 0, len(rawGames))
	for _, g := range rawGames {
		games = append(games, safeGame(g))
	}
	posts := make([]models.PostContext, 0, len(rawPosts))
	for _, p := range rawPosts {
		posts = append(posts, safePost(p))
	}
	contextBlock := buildContext(games, posts)

	prompt := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPolicy),
	}
	if contextBlock != "" {
		prompt = append(prompt, llms.TextParts(llms.ChatMessageTypeSystem, contextBlock))
	}
	for _, m := range messages {
		prompt = append(prompt, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	completion, err := s.llm.GenerateContent(callCtx, prompt, llms.WithTemperature(chatTemperature))
	if err != nil {
		return nil, fmt.Errorf("completion call failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion call returned no choices")
	}

	return &models.ChatResponse{
		Reply:   models.ChatMessage{Role: "assistant", Content: completion.Choices[0].Content},
		Sources: models.ChatSources{Games: games, Posts: posts},
	}, nil
}

// lastUserText scans the history backwards for the most recent user-authored
// message. Empty if the user has not spoken yet.
func lastUserText(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// isPostsIntent reports whether the utterance asks about the newsfeed. It is
// checked before the game-question heuristic and wins every tie.
func isPostsIntent(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "newsfeed") ||
		strings.Contains(t, "news feed") ||
		strings.Contains(t, "feed") ||
		strings.Contains(t, "recent post") ||
		strings.Contains(t, "recent posts") ||
		strings.Contains(t, "latest post") ||
		strings.Contains(t, "latest posts") ||
		strings.Contains(t, "today post") ||
		strings.Contains(t, "today posts") ||
		strings.Contains(t, "people posting") ||
		(strings.Contains(t, "posting") && (strings.Contains(t, "today") || strings.Contains(t, "recent") || strings.Contains(t, "latest"))) ||
		(strings.Contains(t, "post") && (strings.Contains(t, "today") || strings.Contains(t, "recent") || strings.Contains(t, "latest")))
}

func looksLikeGameQuestion(text string) bool {
	t := strings.ToLower(text)
	if isPostsIntent(t) {
		return false
	}
	return strings.Contains(t, "tell me about") ||
		strings.Contains(t, "price of") ||
		strings.Contains(t, "do you have") ||
		strings.Contains(t, "is it available") ||
		strings.Contains(t, "available in your shop")
}

func classifyIntent(text string) intent {
	switch {
	case isPostsIntent(text):
		return intentPosts
	case looksLikeGameQuestion(text):
		return intentGame
	default:
		return intentGeneral
	}
}

var gameQuestionPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tell me about`),
	regexp.MustCompile(`(?i)price of`),
	regexp.MustCompile(`(?i)do you have`),
	regexp.MustCompile(`(?i)is it available`),
	regexp.MustCompile(`(?i)available in your shop`),
}

// extractGameName strips the trigger phrases and question marks from the
// utterance, leaving the candidate title.
func extractGameName(text string) string {
	for _, phrase := range gameQuestionPhrases {
		text = phrase.ReplaceAllString(text, "")
	}
	text = strings.ReplaceAll(text, "?", "")
	return strings.TrimSpace(text)
}

func notInCatalogMessage(gameName string) string {
	name := "that game"
	if gameName != "" {
		name = "**" + gameName + "**"
	}
	return "Nice choice 😄 " + name + " isn’t available in **GameVault** right now.\n\n" +
		"We’re adding new titles regularly 🚀 Want me to suggest similar games from our current catalog?"
}

// safeGame projects a catalog record down to its five public fields. Nothing
// else may cross this boundary toward the model provider.
func safeGame(g *models.Game) models.GameContext {
	return models.GameContext{
		Title:       g.Title,
		Price:       g.Price,
		Genre:       g.Genre,
		Platform:    g.Platform,
		Description: g.Description,
	}
}

// safePost reduces media and YouTube links to counts and drops reactions and
// comments entirely.
func safePost(p *models.Post) models.PostContext {
	name := p.AuthorName
	if name == "" {
		name = "User"
	}
	return models.PostContext{
		Text:         p.Text,
		MediaCount:   len(p.Media),
		YouTubeCount: len(p.YouTubeURLs),
		CreatedAt:    p.CreatedAt,
		Author:       models.PostAuthor{Name: name},
	}
}

// buildContext serializes the redacted records into the two prompt blocks.
// Empty blocks are omitted; non-empty ones are joined with a blank line.
func buildContext(games []models.GameContext, posts []models.PostContext) string {
	var blocks []string

	if len(games) > 0 {
		var b strings.Builder
		b.WriteString("GAMES IN SHOP (ONLY recommend from this list):")
		for i, g := range games {
			fmt.Fprintf(&b, "\n%d. %s | $%v | %s | %s\n   %s",
				i+1, g.Title, g.Price, g.Genre, g.Platform, truncate(g.Description, gameDescriptionLimit))
		}
		blocks = append(blocks, b.String())
	}

	if len(posts) > 0 {
		var b strings.Builder
		b.WriteString("PUBLIC NEWSFEED POSTS (author name is public):")
		for i, p := range posts {
			fmt.Fprintf(&b, "\n%d. %s: %s\n   Media files: %d, YouTube links: %d",
				i+1, p.Author.Name, truncate(p.Text, postTextLimit), p.MediaCount, p.YouTubeCount)
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case "assistant":
		return llms.ChatMessageTypeAI
	case "system":
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}

func emptySources() models.ChatSources {
	return models.ChatSources{Games: []models.GameContext{}, Posts: []models.PostContext{}}
}
