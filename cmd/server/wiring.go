package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/developia-II/longform-translator-backend/internal/config"
	"github.com/developia-II/longform-translator-backend/internal/handlers"
	"github.com/developia-II/longform-translator-backend/internal/pipeline"
	"github.com/developia-II/longform-translator-backend/internal/ratelimit"
	"github.com/developia-II/longform-translator-backend/internal/services"
)

// buildRunners creates one pipeline per profile. All pipelines share the
// completion backend and the rate limiter, so the limit is process-wide.
func buildRunners(ctx context.Context, cfg *config.Config) (map[string]handlers.Runner, error) {
	pipelines, err := buildPipelines(ctx, cfg)
	if err != nil {
		return nil, err
	}

	runners := make(map[string]handlers.Runner, len(pipelines))
	for name, p := range pipelines {
		runners[name] = p
	}
	return runners, nil
}

func buildPipelines(ctx context.Context, cfg *config.Config) (map[string]*pipeline.Pipeline, error) {
	profiles, err := services.LoadProfiles(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}
	if _, ok := profiles.Get(cfg.TranslationProfile); !ok {
		return nil, fmt.Errorf("unknown translation profile %q (available: %v)", cfg.TranslationProfile, profiles.Names())
	}

	model := cfg.Model
	if model == "" && cfg.LLMProvider == config.ProviderGemini {
		model = services.DefaultGeminiModel
	}
	if model != "" {
		profiles = profiles.WithModel(model)
	}

	client, err := newCompletionClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey() == "" {
		log.Warnw("no API key configured, translations will fail until one is set", "provider", cfg.LLMProvider)
	}

	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	opts := pipeline.Options{
		MaxChunkLength: cfg.ChunkMaxLength,
		ChunkDelay:     cfg.PipelineChunkDelay(),
		LimitPerCall:   cfg.RateLimitScope == config.ScopeCall,
	}

	pipelines := make(map[string]*pipeline.Pipeline, len(profiles))
	for name, profile := range profiles {
		translator := services.NewSegmentTranslator(client, profile, cfg.UpstreamTimeout)
		pipelines[name] = pipeline.New(translator, limiter, opts)
	}
	return pipelines, nil
}

func newCompletionClient(ctx context.Context, cfg *config.Config) (services.CompletionClient, error) {
	var client services.CompletionClient
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		client = gemini
	default:
		client = services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.UpstreamTimeout)
	}
	return services.NewBreakerClient(cfg.LLMProvider, client, services.BreakerSettings{}), nil
}
