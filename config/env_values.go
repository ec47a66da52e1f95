package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"resumebot-ai/internal/constants"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Environment struct {
	// Server configs
	IsDocker          bool          `env:"IS_DOCKER" envDefault:"false"`
	Port              string        `env:"PORT" envDefault:"8000"`
	Environment       string        `env:"ENVIRONMENT" envDefault:"DEVELOPMENT"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"console"`
	CorsAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Database configs
	DatabaseDriver       string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN          string `env:"DB_DSN" envDefault:"conversations.db"`
	DatabaseMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`

	// Redis configs, an empty host disables the document cache
	RedisHost        string        `env:"REDIS_HOST" envDefault:""`
	RedisPort        string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisUsername    string        `env:"REDIS_USERNAME" envDefault:""`
	RedisPassword    string        `env:"REDIS_PASSWORD" envDefault:""`
	DocumentCacheTTL time.Duration `env:"DOCUMENT_CACHE_TTL" envDefault:"10m"`

	// LLM configs
	DefaultLLMClient string `env:"DEFAULT_LLM_CLIENT" envDefault:"gemini"`

	// OpenAI configs
	OpenAIAPIKey              string  `env:"OPENAI_API_KEY"`
	OpenAIModel               string  `env:"OPENAI_MODEL"`
	OpenAIMaxCompletionTokens int     `env:"OPENAI_MAX_COMPLETION_TOKENS"`
	OpenAITemperature         float64 `env:"OPENAI_TEMPERATURE"`

	// Gemini configs
	GeminiAPIKey              string  `env:"GOOGLE_API_KEY"`
	GeminiModel               string  `env:"GEMINI_MODEL"`
	GeminiMaxCompletionTokens int     `env:"GEMINI_MAX_COMPLETION_TOKENS"`
	GeminiTemperature         float64 `env:"GEMINI_TEMPERATURE"`
}

var Env Environment

// LoadEnv loads environment variables from .env file if present
// and validates required variables
func LoadEnv() error {
	// Load .env file only if not running in Docker
	if os.Getenv("IS_DOCKER") != "true" {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: .env file not found: %v\n", err)
		}
	}

	parsed, err := parseEnv()
	if err != nil {
		return err
	}
	Env = *parsed
	return validateConfig(&Env)
}

func parseEnv() (*Environment, error) {
	parsed := Environment{}
	if err := env.Parse(&parsed); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	applyLLMDefaults(&parsed)
	return &parsed, nil
}

// Model defaults live with the provider constants so both providers stay in one place.
func applyLLMDefaults(e *Environment) {
	if e.OpenAIModel == "" {
		e.OpenAIModel = constants.OpenAIModel
	}
	if e.OpenAIMaxCompletionTokens == 0 {
		e.OpenAIMaxCompletionTokens = constants.OpenAIMaxCompletionTokens
	}
	if e.OpenAITemperature == 0 {
		e.OpenAITemperature = constants.OpenAITemperature
	}
	if e.GeminiModel == "" {
		e.GeminiModel = constants.GeminiModel
	}
	if e.GeminiMaxCompletionTokens == 0 {
		e.GeminiMaxCompletionTokens = constants.GeminiMaxCompletionTokens
	}
	if e.GeminiTemperature == 0 {
		e.GeminiTemperature = constants.GeminiTemperature
	}
}

func validateConfig(e *Environment) error {
	switch strings.ToLower(e.DatabaseDriver) {
	case constants.DatabaseDriverSQLite, constants.DatabaseDriverPostgres, constants.DatabaseDriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", e.DatabaseDriver)
	}

	if strings.TrimSpace(e.DatabaseDSN) == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}

	switch e.DefaultLLMClient {
	case constants.Gemini, constants.OpenAI:
	default:
		return fmt.Errorf("unsupported DEFAULT_LLM_CLIENT: %s", e.DefaultLLMClient)
	}

	switch strings.ToLower(e.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT: %s", e.LogFormat)
	}

	if e.DocumentCacheTTL < 0 {
		return fmt.Errorf("DOCUMENT_CACHE_TTL must not be negative, got: %s", e.DocumentCacheTTL)
	}

	return nil
}

// RedisEnabled reports whether a document cache should be wired.
func (e *Environment) RedisEnabled() bool {
	return strings.TrimSpace(e.RedisHost) != ""
}
