package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseDriver     string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	NATSSubject        string
	JWTSecret          string
	JWTTTL             time.Duration
	CORSAllowedOrigins string
	ExamCacheTTL       time.Duration
	AIRateLimit        int
	AIRateWindow       time.Duration
	AI                 AIConfig
}

// AIConfig groups the credentials of the question-generation providers.
// Providers are tried in the order OpenRouter, OpenAI, Gemini.
type AIConfig struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenAIAPIKey     string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	MaxTokens        int
	Temperature      float32
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NEPSES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "NEPSES API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5050")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("nats.subject", "nepses.assignments")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("cors.allowed_origins", "http://localhost:8098")
	v.SetDefault("exam.cache_ttl", "5m")
	v.SetDefault("ai.rate_limit", 5)
	v.SetDefault("ai.rate_window", "1m")
	v.SetDefault("openrouter_model", "meta-llama/llama-4-maverick:free")
	v.SetDefault("openai_model", "gpt-3.5-turbo")
	v.SetDefault("gemini_model", "gemini-1.5-pro")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.7)

	jwtTTL, err := parseDuration(v, "jwt.ttl", "168h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v, "exam.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid exam cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v, "ai.rate_window", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai rate window: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseDriver:     strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		NATSSubject:        v.GetString("nats.subject"),
		JWTSecret:          v.GetString("jwt.secret"),
		JWTTTL:             jwtTTL,
		CORSAllowedOrigins: v.GetString("cors.allowed_origins"),
		ExamCacheTTL:       cacheTTL,
		AIRateLimit:        v.GetInt("ai.rate_limit"),
		AIRateWindow:       rateWindow,
		AI: AIConfig{
			OpenRouterAPIKey: v.GetString("openrouter_api_key"),
			OpenRouterModel:  v.GetString("openrouter_model"),
			OpenAIAPIKey:     v.GetString("openai_api_key"),
			OpenAIModel:      v.GetString("openai_model"),
			GeminiAPIKey:     v.GetString("gemini_api_key"),
			GeminiModel:      v.GetString("gemini_model"),
			MaxTokens:        v.GetInt("ai.max_tokens"),
			Temperature:      float32(v.GetFloat64("ai.temperature")),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.AIRateLimit <= 0 {
		cfg.AIRateLimit = 5
	}

	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 1024
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}
