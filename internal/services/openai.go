package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint.
// BaseURL may point at any compatible provider such as Groq.
type OpenAIClient struct {
	client *openai.Client
	apiKey string
}

// NewOpenAIClient creates a client. An empty baseURL uses the OpenAI default
// and a non-positive timeout disables the HTTP client timeout.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	apiKey = strings.TrimSpace(apiKey)
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
	}
}

func (o *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("openai: API key is not set: %w", ErrUpstreamAuthFailed)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyTranslation)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return classifyStatus("openai", status, err)
}

// classifyStatus maps an upstream HTTP status to the failure classes.
func classifyStatus(provider string, status int, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", provider, ErrUpstreamRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w: %w", provider, ErrUpstreamAuthFailed, err)
	default:
		return fmt.Errorf("%s API error: %w", provider, err)
	}
}
