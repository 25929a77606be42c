package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"

	"gamevault-backend/internal/models"
	"gamevault-backend/internal/repository"
)

// ─── Fakes ───

type fakeCatalog struct {
	games []*models.Game
}

func (f *fakeCatalog) ListLatest(ctx context.Context, limit int) ([]*models.Game, error) {
	if limit > len(f.games) {
		limit = len(f.games)
	}
	return f.games[:limit], nil
}

func (f *fakeCatalog) FindByTitle(ctx context.Context, name string) (*models.Game, error) {
	for _, g := range f.games {
		if strings.Contains(strings.ToLower(g.Title), strings.ToLower(name)) {
			return g, nil
		}
	}
	return nil, repository.ErrGameNotFound
}

type fakeFeed struct {
	posts []*models.Post
}

func (f *fakeFeed) ListLatest(ctx context.Context, limit int) ([]*models.Post, error) {
	if limit > len(f.posts) {
		limit = len(f.posts)
	}
	return f.posts[:limit], nil
}

type fakeLLM struct {
	calls  int
	prompt []llms.MessageContent
	reply  string
	err    error
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.prompt = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func promptText(prompt []llms.MessageContent) string {
	var b strings.Builder
	for _, m := range prompt {
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				b.WriteString(tc.Text)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func userMsg(text string) []models.ChatMessage {
	return []models.ChatMessage{{Role: "user", Content: text}}
}

func makeGames(n int) []*models.Game {
	games := make([]*models.Game, n)
	for i := range games {
		games[i] = &models.Game{
			Title:       "Game " + string(rune('A'+i)),
			Price:       9.99,
			Genre:       "RPG",
			Platform:    "PC",
			Description: "A game",
		}
	}
	return games
}

// ─── Intent classification ───

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want intent
	}{
		{"newsfeed keyword", "show me the newsfeed", intentPosts},
		{"feed keyword", "anything new on the feed?", intentPosts},
		{"recent posts", "what are the recent posts", intentPosts},
		{"people posting", "what are people posting", intentPosts},
		{"posting today", "who is posting today", intentPosts},
		{"tell me about", "tell me about Elden Ring", intentGame},
		{"price of", "price of dark souls iii", intentGame},
		{"do you have", "do you have Hades", intentGame},
		{"availability", "is it available?", intentGame},
		{"general", "recommend me something fun", intentGeneral},
		{"empty", "", intentGeneral},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyIntent(tc.text); got != tc.want {
				t.Errorf("classifyIntent(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyIntent_PostsWinsOverGame(t *testing.T) {
	// An utterance matching both heuristics must resolve to the feed.
	text := "what are people posting about Elden Ring price"
	if got := classifyIntent(text); got != intentPosts {
		t.Errorf("classifyIntent(%q) = %v, want intentPosts", text, got)
	}
}

func TestLastUserText(t *testing.T) {
	messages := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second"},
		{Role: "assistant", Content: "another reply"},
	}
	if got := lastUserText(messages); got != "second" {
		t.Errorf("lastUserText = %q, want %q", got, "second")
	}

	if got := lastUserText([]models.ChatMessage{{Role: "assistant", Content: "hi"}}); got != "" {
		t.Errorf("lastUserText with no user message = %q, want empty", got)
	}

	if got := lastUserText(nil); got != "" {
		t.Errorf("lastUserText(nil) = %q, want empty", got)
	}
}

func TestExtractGameName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"tell me about Elden Ring?", "Elden Ring"},
		{"price of dark souls iii", "dark souls iii"},
		{"Do You Have Hades", "Hades"},
		{"is it available?", ""},
		{"TELL ME ABOUT price of Celeste", "Celeste"},
		{"tell me about İstanbul Quest", "İstanbul Quest"},
		{strings.Repeat("Ⱥ", 20) + "tell me about", strings.Repeat("Ⱥ", 20)},
		{"price of ÆTHELRED: Kingdom of Wessex?", "ÆTHELRED: Kingdom of Wessex"},
	}

	for _, tc := range tests {
		got := extractGameName(tc.text)
		if got != tc.want {
			t.Errorf("extractGameName(%q) = %q, want %q", tc.text, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("extractGameName(%q) produced invalid UTF-8: %q", tc.text, got)
		}
	}
}

// ─── Projection & serialization ───

func TestSafeGameProjection(t *testing.T) {
	g := &models.Game{
		Title:       "Hades",
		Price:       24.99,
		Genre:       "Roguelike",
		Platform:    "PC",
		Description: "Escape the underworld",
		Stock:       42,
		CoverMedia:  "https://res.cloudinary.com/demo/image/upload/v1/games/cover/hades.jpg",
	}

	data, err := json.Marshal(safeGame(g))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var keys map[string]interface{}
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"title", "price", "genre", "platform", "description"}
	if len(keys) != len(want) {
		t.Fatalf("projection has %d keys, want %d: %v", len(keys), len(want), keys)
	}
	for _, k := range want {
		if _, ok := keys[k]; !ok {
			t.Errorf("projection missing key %q", k)
		}
	}
}

func TestSafePost_CountsNotURLs(t *testing.T) {
	p := &models.Post{
		AuthorName:  "alice",
		Text:        "check this out",
		Media:       []string{"https://res.cloudinary.com/demo/image/upload/a.jpg", "https://res.cloudinary.com/demo/image/upload/b.jpg"},
		YouTubeURLs: []string{"https://youtu.be/abc123"},
		CreatedAt:   time.Now(),
	}

	sp := safePost(p)
	if sp.MediaCount != 2 {
		t.Errorf("MediaCount = %d, want 2", sp.MediaCount)
	}
	if sp.YouTubeCount != 1 {
		t.Errorf("YouTubeCount = %d, want 1", sp.YouTubeCount)
	}
	if sp.Author.Name != "alice" {
		t.Errorf("Author.Name = %q, want alice", sp.Author.Name)
	}
}

func TestSafePost_DefaultAuthorName(t *testing.T) {
	sp := safePost(&models.Post{Text: "hi"})
	if sp.Author.Name != "User" {
		t.Errorf("Author.Name = %q, want User", sp.Author.Name)
	}
}

func TestBuildContext_Truncation(t *testing.T) {
	longDesc := strings.Repeat("d", 500)
	longText := strings.Repeat("t", 500)

	games := []models.GameContext{{Title: "X", Description: longDesc}}
	posts := []models.PostContext{{Text: longText, Author: models.PostAuthor{Name: "bob"}}}

	ctx := buildContext(games, posts)

	if strings.Contains(ctx, strings.Repeat("d", gameDescriptionLimit+1)) {
		t.Error("game description not truncated to limit")
	}
	if !strings.Contains(ctx, strings.Repeat("d", gameDescriptionLimit)) {
		t.Error("game description missing from context")
	}
	if strings.Contains(ctx, strings.Repeat("t", postTextLimit+1)) {
		t.Error("post text not truncated to limit")
	}
}

func TestBuildContext_OmitsEmptyBlocks(t *testing.T) {
	ctx := buildContext(nil, []models.PostContext{{Text: "hello", Author: models.PostAuthor{Name: "bob"}}})
	if strings.Contains(ctx, "GAMES IN SHOP") {
		t.Error("empty games block should be omitted")
	}
	if !strings.Contains(ctx, "PUBLIC NEWSFEED POSTS") {
		t.Error("posts block missing")
	}

	if got := buildContext(nil, nil); got != "" {
		t.Errorf("context with no records = %q, want empty", got)
	}
}

// ─── Pipeline ───

func TestChat_PostsIntentLimits(t *testing.T) {
	posts := make([]*models.Post, 8)
	for i := range posts {
		posts[i] = &models.Post{AuthorName: "u", Text: "post", CreatedAt: time.Now()}
	}

	llm := &fakeLLM{reply: "here is the feed"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(10)}, &fakeFeed{posts: posts}, llm)

	resp := svc.Chat(context.Background(), userMsg("what are the latest posts?"))

	if len(resp.Sources.Posts) != latestPostsLimit {
		t.Errorf("got %d post sources, want %d", len(resp.Sources.Posts), latestPostsLimit)
	}
	if len(resp.Sources.Games) != fillerGamesLimit {
		t.Errorf("got %d game sources, want %d", len(resp.Sources.Games), fillerGamesLimit)
	}
	if llm.calls != 1 {
		t.Errorf("completion called %d times, want 1", llm.calls)
	}
	if resp.Reply.Content != "here is the feed" {
		t.Errorf("reply = %q", resp.Reply.Content)
	}
}

func TestChat_GeneralIntentSample(t *testing.T) {
	llm := &fakeLLM{reply: "try these"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(10)}, &fakeFeed{}, llm)

	resp := svc.Chat(context.Background(), userMsg("recommend me something"))

	if len(resp.Sources.Games) != catalogSampleLimit {
		t.Errorf("got %d game sources, want %d", len(resp.Sources.Games), catalogSampleLimit)
	}
	if len(resp.Sources.Posts) != 0 {
		t.Errorf("got %d post sources, want 0", len(resp.Sources.Posts))
	}
}

func TestChat_EmptyHistoryFallsBackToGeneral(t *testing.T) {
	llm := &fakeLLM{reply: "hello"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(10)}, &fakeFeed{}, llm)

	resp := svc.Chat(context.Background(), nil)

	if len(resp.Sources.Games) != catalogSampleLimit {
		t.Errorf("got %d game sources, want %d", len(resp.Sources.Games), catalogSampleLimit)
	}
	if llm.calls != 1 {
		t.Errorf("completion called %d times, want 1", llm.calls)
	}
}

func TestChat_NoMatchShortCircuit(t *testing.T) {
	llm := &fakeLLM{reply: "should not be used"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(3)}, &fakeFeed{}, llm)

	resp := svc.Chat(context.Background(), userMsg("tell me about Zelda Ultra XYZ"))

	if llm.calls != 0 {
		t.Fatalf("completion called %d times, want 0", llm.calls)
	}
	want := notInCatalogMessage("Zelda Ultra XYZ")
	if resp.Reply.Content != want {
		t.Errorf("reply = %q, want %q", resp.Reply.Content, want)
	}
	if !strings.Contains(resp.Reply.Content, "**Zelda Ultra XYZ**") {
		t.Errorf("canned reply should name the requested title: %q", resp.Reply.Content)
	}
	if len(resp.Sources.Games) != 0 || len(resp.Sources.Posts) != 0 {
		t.Errorf("short circuit should carry empty sources, got %d games %d posts",
			len(resp.Sources.Games), len(resp.Sources.Posts))
	}
}

func TestChat_NonASCIITitle(t *testing.T) {
	llm := &fakeLLM{reply: "should not be used"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(3)}, &fakeFeed{}, llm)

	title := strings.Repeat("Ⱥ", 20)
	resp := svc.Chat(context.Background(), userMsg("tell me about "+title))

	if llm.calls != 0 {
		t.Fatalf("completion called %d times, want 0", llm.calls)
	}
	if want := notInCatalogMessage(title); resp.Reply.Content != want {
		t.Errorf("reply = %q, want %q", resp.Reply.Content, want)
	}
	if !utf8.ValidString(resp.Reply.Content) {
		t.Errorf("reply is not valid UTF-8: %q", resp.Reply.Content)
	}

	// Lowercasing changes the byte length of İ; the phrase must still come
	// out clean.
	resp = svc.Chat(context.Background(), userMsg("tell me about İKİ Kule"))
	if want := notInCatalogMessage("İKİ Kule"); resp.Reply.Content != want {
		t.Errorf("reply = %q, want %q", resp.Reply.Content, want)
	}
}

func TestChat_ExactMatchPrecision(t *testing.T) {
	catalog := &fakeCatalog{games: []*models.Game{
		{Title: "Dark Souls III", Price: 59.99, Genre: "Action RPG", Platform: "PC", Description: "Prepare to die"},
		{Title: "Hades", Price: 24.99},
		{Title: "Celeste", Price: 19.99},
	}}
	llm := &fakeLLM{reply: "it costs $59.99"}
	svc := NewAssistantService(catalog, &fakeFeed{}, llm)

	resp := svc.Chat(context.Background(), userMsg("price of dark souls iii"))

	if len(resp.Sources.Games) != 1 {
		t.Fatalf("got %d game sources, want exactly 1", len(resp.Sources.Games))
	}
	if resp.Sources.Games[0].Title != "Dark Souls III" {
		t.Errorf("matched %q, want Dark Souls III", resp.Sources.Games[0].Title)
	}
	if llm.calls != 1 {
		t.Errorf("completion called %d times, want 1", llm.calls)
	}
}

func TestChat_RedactionNoURLsInPrompt(t *testing.T) {
	mediaURL := "https://res.cloudinary.com/demo/image/upload/v1/uploads/secret.jpg"
	ytURL := "https://youtu.be/hidden123"

	feed := &fakeFeed{posts: []*models.Post{{
		AuthorName:  "carol",
		Text:        "new gameplay clip",
		Media:       []string{mediaURL},
		YouTubeURLs: []string{ytURL},
		CreatedAt:   time.Now(),
	}}}

	llm := &fakeLLM{reply: "ok"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(4)}, feed, llm)

	svc.Chat(context.Background(), userMsg("what are people posting today?"))

	prompt := promptText(llm.prompt)
	if strings.Contains(prompt, mediaURL) {
		t.Error("media URL leaked into the prompt")
	}
	if strings.Contains(prompt, ytURL) {
		t.Error("YouTube URL leaked into the prompt")
	}
	if !strings.Contains(prompt, "Media files: 1, YouTube links: 1") {
		t.Error("prompt should carry media counts")
	}
}

func TestChat_PromptShape(t *testing.T) {
	llm := &fakeLLM{reply: "ok"}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(2)}, &fakeFeed{}, llm)

	history := []models.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
		{Role: "user", Content: "recommend me something"},
	}
	svc.Chat(context.Background(), history)

	// policy + context + 3 history turns
	if len(llm.prompt) != 5 {
		t.Fatalf("prompt has %d messages, want 5", len(llm.prompt))
	}
	if llm.prompt[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("first message role = %v, want system", llm.prompt[0].Role)
	}
	if llm.prompt[1].Role != llms.ChatMessageTypeSystem {
		t.Errorf("context message role = %v, want system", llm.prompt[1].Role)
	}
	if llm.prompt[2].Role != llms.ChatMessageTypeHuman {
		t.Errorf("history message role = %v, want human", llm.prompt[2].Role)
	}
	if llm.prompt[3].Role != llms.ChatMessageTypeAI {
		t.Errorf("assistant history role = %v, want ai", llm.prompt[3].Role)
	}
}

func TestChat_GracefulDegradation(t *testing.T) {
	llm := &fakeLLM{err: errors.New("provider is down")}
	svc := NewAssistantService(&fakeCatalog{games: makeGames(6)}, &fakeFeed{}, llm)

	resp := svc.Chat(context.Background(), userMsg("recommend me something"))

	if resp.Reply.Role != "assistant" {
		t.Errorf("reply role = %q, want assistant", resp.Reply.Role)
	}
	if resp.Reply.Content != degradeMessage {
		t.Errorf("reply = %q, want degrade message", resp.Reply.Content)
	}
	if len(resp.Sources.Games) != 0 || len(resp.Sources.Posts) != 0 {
		t.Error("degraded response should carry empty sources")
	}
}

type failingCatalog struct{}

func (failingCatalog) ListLatest(ctx context.Context, limit int) ([]*models.Game, error) {
	return nil, errors.New("database is down")
}

func (failingCatalog) FindByTitle(ctx context.Context, name string) (*models.Game, error) {
	return nil, errors.New("database is down")
}

func TestChat_RetrievalFailureDegrades(t *testing.T) {
	llm := &fakeLLM{reply: "unused"}
	svc := NewAssistantService(failingCatalog{}, &fakeFeed{}, llm)

	resp := svc.Chat(context.Background(), userMsg("recommend me something"))

	if resp.Reply.Content != degradeMessage {
		t.Errorf("reply = %q, want degrade message", resp.Reply.Content)
	}
	if llm.calls != 0 {
		t.Errorf("completion called %d times, want 0", llm.calls)
	}
}

func TestNotInCatalogMessage_EmptyName(t *testing.T) {
	msg := notInCatalogMessage("")
	if !strings.Contains(msg, "that game") {
		t.Errorf("empty name should fall back to 'that game': %q", msg)
	}
}
