package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamevault-backend/internal/models"
)

type stubAssistant struct {
	calls    int
	messages []models.ChatMessage
	resp     *models.ChatResponse
}

func (s *stubAssistant) Chat(ctx context.Context, messages []models.ChatMessage) *models.ChatResponse {
	s.calls++
	s.messages = messages
	return s.resp
}

func postChat(t *testing.T, h *AIHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Chat(rr, req)
	return rr
}

func TestAIChat_MessagesNotArray(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string", `{"messages": "hello"}`},
		{"object", `{"messages": {"role": "user"}}`},
		{"number", `{"messages": 42}`},
		{"missing", `{}`},
		{"null", `{"messages": null}`},
		{"invalid json", `{messages`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAssistant{resp: &models.ChatResponse{}}
			rr := postChat(t, NewAIHandler(stub), tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
			if stub.calls != 0 {
				t.Errorf("assistant called %d times, want 0", stub.calls)
			}
		})
	}
}

func TestAIChat_Success(t *testing.T) {
	stub := &stubAssistant{resp: &models.ChatResponse{
		Reply: models.ChatMessage{Role: "assistant", Content: "try Hades"},
		Sources: models.ChatSources{
			Games: []models.GameContext{{Title: "Hades", Price: 24.99}},
			Posts: []models.PostContext{},
		},
	}}

	rr := postChat(t, NewAIHandler(stub), `{"messages": [{"role": "user", "content": "recommend me something"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if stub.calls != 1 {
		t.Fatalf("assistant called %d times, want 1", stub.calls)
	}
	if len(stub.messages) != 1 || stub.messages[0].Content != "recommend me something" {
		t.Errorf("messages passed through wrong: %+v", stub.messages)
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply.Role != "assistant" || resp.Reply.Content != "try Hades" {
		t.Errorf("reply = %+v", resp.Reply)
	}
	if len(resp.Sources.Games) != 1 || resp.Sources.Games[0].Title != "Hades" {
		t.Errorf("sources = %+v", resp.Sources)
	}
}

func TestAIChat_EmptyArrayIsValid(t *testing.T) {
	stub := &stubAssistant{resp: &models.ChatResponse{
		Reply:   models.ChatMessage{Role: "assistant", Content: "hi"},
		Sources: models.ChatSources{Games: []models.GameContext{}, Posts: []models.PostContext{}},
	}}

	rr := postChat(t, NewAIHandler(stub), `{"messages": []}`)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if stub.calls != 1 {
		t.Errorf("assistant called %d times, want 1", stub.calls)
	}
}
