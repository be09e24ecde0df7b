package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "translator")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreDriver != StoreMongo || cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("driver/provider = %q/%q", cfg.StoreDriver, cfg.LLMProvider)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != time.Minute || cfg.RateLimitScope != ScopeCall {
		t.Errorf("rate limit = %d per %v (%s)", cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitScope)
	}
	if cfg.ChunkMaxLength != 1500 || cfg.ChunkDelay != time.Second {
		t.Errorf("chunking = %d, %v", cfg.ChunkMaxLength, cfg.ChunkDelay)
	}
	if cfg.UpstreamTimeout != time.Minute {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.TranslationProfile != "general" {
		t.Errorf("TranslationProfile = %q", cfg.TranslationProfile)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_SCOPE", "run")
	t.Setenv("CHUNK_DELAY", "0s")
	t.Setenv("LLM_MODEL", "gemini-1.5-pro")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SQLitePath != "/tmp/x.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	if cfg.APIKey() != "g-key" {
		t.Errorf("APIKey = %q, want gemini key", cfg.APIKey())
	}
	if cfg.RateLimitMax != 3 || cfg.RateLimitWindow != 30*time.Second || cfg.RateLimitScope != ScopeRun {
		t.Errorf("rate limit = %d per %v (%s)", cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitScope)
	}
	if cfg.PipelineChunkDelay() >= 0 {
		t.Errorf("zero delay should disable the pause, got %v", cfg.PipelineChunkDelay())
	}
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store_driver: sqlite\nsqlite_path: file.db\nchunk_max_length: 800\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHUNK_MAX_LENGTH", "900")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SQLitePath != "file.db" {
		t.Errorf("SQLitePath = %q", cfg.SQLitePath)
	}
	// environment wins over the file
	if cfg.ChunkMaxLength != 900 {
		t.Errorf("ChunkMaxLength = %d, want 900", cfg.ChunkMaxLength)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "postgres"}, "StoreDriver"},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongo", "MONGODB_URI": ""}, "MongoURI"},
		{"unknown provider", map[string]string{"STORE_DRIVER": "sqlite", "LLM_PROVIDER": "llama"}, "LLMProvider"},
		{"bad scope", map[string]string{"STORE_DRIVER": "sqlite", "RATE_LIMIT_SCOPE": "global"}, "RateLimitScope"},
		{"zero limit", map[string]string{"STORE_DRIVER": "sqlite", "RATE_LIMIT_MAX": "0"}, "RateLimitMax"},
		{"bad base url", map[string]string{"STORE_DRIVER": "sqlite", "OPENAI_BASE_URL": "not a url"}, "OpenAIBaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
