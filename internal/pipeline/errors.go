package pipeline

import (
	"errors"

	"github.com/developia-II/longform-translator-backend/internal/ratelimit"
	"github.com/developia-II/longform-translator-backend/internal/services"
)

// Error kinds visible to callers. Their messages are safe to show to users.
var (
	ErrRateLimitExceeded      = errors.New("too many requests, please try again later")
	ErrUpstreamRateLimited    = errors.New("translation service rate limit exceeded, please try again later")
	ErrUpstreamAuthFailed     = errors.New("translation service is not configured correctly")
	ErrEmptyTranslationResult = errors.New("translation service returned an empty result")
	ErrTranslationFailed      = errors.New("failed to translate text, please try again later")
)

// Error is a failed pipeline run. Error() returns only the kind's message;
// the cause stays reachable through errors.Is and errors.As.
type Error struct {
	Kind  error
	Chunk int // zero-based chunk index, -1 before any chunk was started
	Err   error
}

func (e *Error) Error() string {
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Kind returns the error kind of err, or ErrTranslationFailed when err did
// not come from a pipeline run.
func Kind(err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrTranslationFailed
}

func classify(err error) error {
	switch {
	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return ErrRateLimitExceeded
	case errors.Is(err, services.ErrUpstreamRateLimited):
		return ErrUpstreamRateLimited
	case errors.Is(err, services.ErrUpstreamAuthFailed):
		return ErrUpstreamAuthFailed
	case errors.Is(err, services.ErrEmptyTranslation):
		return ErrEmptyTranslationResult
	default:
		return ErrTranslationFailed
	}
}
