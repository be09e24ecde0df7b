// Package config loads service settings from the environment, an optional
// .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/developia-II/longform-translator-backend/internal/services"
)

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	ScopeCall = "call"
	ScopeRun  = "run"
)

type Config struct {
	Port        string `mapstructure:"port" validate:"required"`
	FrontendURL string `mapstructure:"frontend_url"`
	JWTSecret   string `mapstructure:"jwt_secret"`

	StoreDriver string `mapstructure:"store_driver" validate:"oneof=mongo sqlite"`
	MongoURI    string `mapstructure:"mongodb_uri" validate:"required_if=StoreDriver mongo"`
	DBName      string `mapstructure:"db_name" validate:"required_if=StoreDriver mongo"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=StoreDriver sqlite"`

	LLMProvider   string `mapstructure:"llm_provider" validate:"oneof=openai gemini"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	// Model overrides the model of every profile when set.
	Model string `mapstructure:"llm_model"`

	TranslationProfile string `mapstructure:"translation_profile" validate:"required"`
	ProfilesFile       string `mapstructure:"profiles_file"`

	RateLimitMax    int           `mapstructure:"rate_limit_max" validate:"min=1"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window" validate:"gt=0"`
	RateLimitScope  string        `mapstructure:"rate_limit_scope" validate:"oneof=call run"`

	ChunkMaxLength  int           `mapstructure:"chunk_max_length" validate:"min=1"`
	ChunkDelay      time.Duration `mapstructure:"chunk_delay" validate:"gte=0"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout" validate:"gt=0"`

	HTTPRateLimit int `mapstructure:"http_rate_limit" validate:"min=1"`
}

var defaults = map[string]any{
	"port":                "8080",
	"store_driver":        StoreMongo,
	"sqlite_path":         "translations.db",
	"llm_provider":        ProviderOpenAI,
	"translation_profile": services.DefaultProfileName,
	"rate_limit_max":      10,
	"rate_limit_window":   time.Minute,
	"rate_limit_scope":    ScopeCall,
	"chunk_max_length":    1500,
	"chunk_delay":         time.Second,
	"upstream_timeout":    60 * time.Second,
	"http_rate_limit":     100,
}

// Load reads .env (if present), the config file (if given) and the
// environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		log.Info("No .env file found")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about
	for _, key := range []string{"frontend_url", "jwt_secret", "mongodb_uri", "db_name",
		"openai_api_key", "openai_base_url", "gemini_api_key", "llm_model", "profiles_file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		log.Infow("using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// PipelineChunkDelay maps a configured zero delay to "no delay".
func (c *Config) PipelineChunkDelay() time.Duration {
	if c.ChunkDelay == 0 {
		return -1
	}
	return c.ChunkDelay
}
