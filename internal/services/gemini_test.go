package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestGeminiClient_MissingKey(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), "", time.Second)
	if err != nil {
		t.Fatalf("NewGeminiClient failed: %v", err)
	}

	_, err = client.Complete(context.Background(), CompletionRequest{Model: DefaultGeminiModel})
	if !errors.Is(err, ErrUpstreamAuthFailed) {
		t.Errorf("got %v, want ErrUpstreamAuthFailed", err)
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"rate limited", genai.APIError{Code: 429, Message: "quota"}, ErrUpstreamRateLimited},
		{"rate limited pointer", &genai.APIError{Code: 429}, ErrUpstreamRateLimited},
		{"unauthorized pointer", &genai.APIError{Code: 401}, ErrUpstreamAuthFailed},
		{"forbidden", genai.APIError{Code: 403}, ErrUpstreamAuthFailed},
		{"wrapped", fmt.Errorf("generate: %w", genai.APIError{Code: 429}), ErrUpstreamRateLimited},
		{"server error", genai.APIError{Code: 500}, nil},
		{"network", errors.New("connection reset"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGeminiError(tt.err)
			if tt.expected != nil {
				if !errors.Is(err, tt.expected) {
					t.Errorf("got %v, want %v", err, tt.expected)
				}
				return
			}
			if errors.Is(err, ErrUpstreamRateLimited) || errors.Is(err, ErrUpstreamAuthFailed) {
				t.Errorf("%v classified as %v", tt.err, err)
			}
		})
	}
}
