package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the Gemini backend is selected without an
// explicit model.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a client. Without an API key the client is still
// returned and every call fails with ErrUpstreamAuthFailed.
func NewGeminiClient(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &GeminiClient{}, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini: API key is not set: %w", ErrUpstreamAuthFailed)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
		TopP:              genai.Ptr(req.TopP),
		MaxOutputTokens:   int32(req.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.User), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyTranslation)
	}
	return resp.Text(), nil
}

func classifyGeminiError(err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}
	return classifyStatus("gemini", status, err)
}
