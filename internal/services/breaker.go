package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker around a completion backend.
type BreakerSettings struct {
	// ConsecutiveFailures opens the circuit. Default: 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the circuit stays open. Default: 30s.
	OpenTimeout time.Duration
}

// BreakerClient stops calling a failing backend for a while after repeated
// transport failures.
type BreakerClient struct {
	next CompletionClient
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(name string, next CompletionClient, s BreakerSettings) *BreakerClient {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerClient{next: next, cb: cb}
}

func (b *BreakerClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%s: %w: %w", b.cb.Name(), ErrUpstreamUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// countsAsHealthy treats answers that prove the backend is reachable as
// successes. Only transport and server failures trip the breaker.
func countsAsHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, ErrEmptyTranslation) ||
		errors.Is(err, ErrUpstreamAuthFailed) ||
		errors.Is(err, context.Canceled)
}
