package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newChatServer(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var received []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		received = append(received, payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

const chatOK = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Сәлем әлем."}, "finish_reason": "stop"}]
}`

func TestOpenAIClient_Complete(t *testing.T) {
	srv, received := newChatServer(t, http.StatusOK, chatOK)
	client := NewOpenAIClient("test-key", srv.URL+"/v1", 5*time.Second)

	got, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o",
		System:      "system",
		User:        "user",
		Temperature: 0.2,
		TopP:        0.95,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Сәлем әлем." {
		t.Errorf("Complete = %q", got)
	}

	if len(*received) != 1 {
		t.Fatalf("server got %d requests, want 1", len(*received))
	}
	req := (*received)[0]
	if req["model"] != "gpt-4o" {
		t.Errorf("model = %v", req["model"])
	}
	if req["max_tokens"] != float64(2000) {
		t.Errorf("max_tokens = %v", req["max_tokens"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v, want system and user", msgs)
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("first message role = %v, want system", first["role"])
	}
}

func TestOpenAIClient_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrUpstreamRateLimited},
		{"unauthorized", http.StatusUnauthorized, ErrUpstreamAuthFailed},
		{"forbidden", http.StatusForbidden, ErrUpstreamAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newChatServer(t, tt.status, `{"error": {"message": "nope", "type": "error"}}`)
			client := NewOpenAIClient("test-key", srv.URL+"/v1", 5*time.Second)

			_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
			if !errors.Is(err, tt.expected) {
				t.Errorf("got %v, want %v", err, tt.expected)
			}
		})
	}
}

func TestOpenAIClient_ServerErrorIsUnclassified(t *testing.T) {
	srv, _ := newChatServer(t, http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`)
	client := NewOpenAIClient("test-key", srv.URL+"/v1", 5*time.Second)

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrUpstreamRateLimited) || errors.Is(err, ErrUpstreamAuthFailed) {
		t.Errorf("server error classified as %v", err)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv, _ := newChatServer(t, http.StatusOK, `{"id": "x", "object": "chat.completion", "choices": []}`)
	client := NewOpenAIClient("test-key", srv.URL+"/v1", 5*time.Second)

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
	if !errors.Is(err, ErrEmptyTranslation) {
		t.Errorf("got %v, want ErrEmptyTranslation", err)
	}
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	srv, received := newChatServer(t, http.StatusOK, chatOK)
	client := NewOpenAIClient("  ", srv.URL+"/v1", 5*time.Second)

	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
	if !errors.Is(err, ErrUpstreamAuthFailed) {
		t.Errorf("got %v, want ErrUpstreamAuthFailed", err)
	}
	if len(*received) != 0 {
		t.Errorf("server got %d requests, want none", len(*received))
	}
}
