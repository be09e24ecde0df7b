package services

import (
	"context"
	"errors"
)

// Upstream failure classes. Backends wrap their transport errors with one of
// these so callers can tell them apart with errors.Is.
var (
	ErrUpstreamRateLimited = errors.New("upstream rate limit exceeded")
	ErrUpstreamAuthFailed  = errors.New("upstream authentication failed")
	ErrEmptyTranslation    = errors.New("no translation received")
	ErrUpstreamUnavailable = errors.New("upstream temporarily unavailable")
)

// CompletionRequest is a single chat completion with a system and a user
// instruction.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// CompletionClient sends a completion request to a language model and returns
// the raw text of the first completion.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
