package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	CorsAllowedOrigins string // comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis — backs the distributed burn-admission semaphore
	RedisURL string

	// Object storage mirror for uploaded source videos
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string

	// Filesystem layout
	DataRoot string
	FontsDir string

	// External binaries
	EncoderBin string
	ProbeBin   string

	// Burn Orchestrator
	BurnConcurrency int
	BurnTimeout     time.Duration

	// Whisper transcription (OpenAI)
	OpenAIKey string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	dataRoot := getEnv("DATA_ROOT", "./data")

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		StorageEndpoint:    getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey:   getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:   getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "lyricburn-videos"),
		DataRoot:           dataRoot,
		FontsDir:           getEnv("FONTS_DIR", filepath.Join(dataRoot, "fonts")),
		EncoderBin:         getEnv("ENCODER_BIN", "ffmpeg"),
		ProbeBin:           getEnv("PROBE_BIN", "ffprobe"),
		BurnConcurrency:    getEnvInt("BURN_CONCURRENCY", 2),
		BurnTimeout:        time.Duration(getEnvInt("BURN_TIMEOUT_S", 180)) * time.Second,
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.BurnConcurrency < 1 {
		return nil, fmt.Errorf("BURN_CONCURRENCY must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
