package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DefaultSystemInstruction is used when SYSTEM_INSTRUCTION is not set.
// Defined in code rather than a struct tag because the text contains commas,
// which go-envconfig treats as option separators.
const DefaultSystemInstruction = "You are a friendly, helpful, and concise multimodal AI assistant. " +
	"Provide detailed and accurate responses, especially when analyzing uploaded images."

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Gemini GeminiConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Chat   ChatConfig
}

type GeminiConfig struct {
	// APIKey may legitimately be absent: the gateway starts, but every
	// submission fails fast with a missing-credential error.
	APIKey            string        `env:"GEMINI_API_KEY"`
	Endpoint          string        `env:"GEMINI_ENDPOINT, default=https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-preview-09-2025:generateContent"`
	SystemInstruction string        `env:"SYSTEM_INSTRUCTION"`
	Timeout           time.Duration `env:"GEMINI_TIMEOUT, default=60s"`
	MaxAttempts       int           `env:"GEMINI_MAX_ATTEMPTS, default=3"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=sample_mflix"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ChatConfig struct {
	HistoryWindow    int  `env:"CHAT_HISTORY_WINDOW, default=10"`
	Greeting         bool `env:"CHAT_GREETING, default=true"`
	ArchiveWorkers   int  `env:"ARCHIVE_WORKERS, default=4"`
	LoginMaxFailures int  `env:"LOGIN_MAX_FAILURES, default=5"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if cfg.Gemini.SystemInstruction == "" {
		cfg.Gemini.SystemInstruction = DefaultSystemInstruction
	}
	return &cfg
}
