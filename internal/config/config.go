// Package config loads configuration from environment variables and .env files.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the API client and CLI
type Config struct {
	// API
	APIKey  string        `env:"CO_API_KEY,required,notEmpty"`
	BaseURL string        `env:"CO_API_URL" envDefault:"https://api.cohere.ai/v1"`
	Timeout time.Duration `env:"COHERE_TIMEOUT" envDefault:"60s"`

	// Streaming and batching
	StreamBufferSize int `env:"COHERE_STREAM_BUFFER" envDefault:"16"`
	EmbedConcurrency int `env:"COHERE_EMBED_CONCURRENCY" envDefault:"4"`

	// Chat history kept by the interactive CLI
	HistoryMaxMessages int           `env:"COHERE_HISTORY_MAX_MESSAGES" envDefault:"20"`
	HistoryTTL         time.Duration `env:"COHERE_HISTORY_TTL" envDefault:"1h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from .env file (if present) and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
