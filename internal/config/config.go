// Package config loads application configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// Server configuration
	ServerAddr     string   `env:"SERVER_ADDR" envDefault:":8000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Data paths
	DataDir     string `env:"DATA_DIR" envDefault:"./data/cases"`
	VectorDBDir string `env:"VECTOR_DB_DIR" envDefault:"./data/vectordb"`
	PromptDir   string `env:"PROMPT_DIR"`

	// Anthropic API (completion)
	AnthropicAPIKey string  `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string  `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-5"`
	LLMTemperature  float64 `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMMaxTokens    int     `env:"LLM_MAX_TOKENS" envDefault:"1000"`

	// OpenAI API (embeddings)
	OpenAIAPIKey   string  `env:"OPENAI_API_KEY"`
	EmbeddingModel string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbedRateRPS   float64 `env:"EMBED_RATE_RPS" envDefault:"5"`

	// Retrieval settings
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"512"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"50"`
	TopKRetrieve int `env:"TOP_K_RETRIEVAL" envDefault:"5"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment, first loading a .env
// file if one is present in the working directory.
func Load() (*Config, error) {
	// A missing .env file is fine; real environments set vars directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopKRetrieve <= 0 {
		return fmt.Errorf("TOP_K_RETRIEVAL must be positive, got %d", c.TopKRetrieve)
	}
	return nil
}
