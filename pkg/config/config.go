package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Load when no Gemini credential is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

type Config struct {
	GoogleApiKey string
	Model        string
	DatabaseURL  string
	Port         string
	NotesFile    string
	ModelTimeout time.Duration
	LogLevel     string
	LogFormat    string
	CORSOrigins  []string
}

// Load reads the configuration from the environment, loading a .env file
// first when one exists. The API key is mandatory.
func Load() (*Config, error) {
	// It's okay if .env doesn't exist, as long as env vars are set
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (*Config, error) {
	apiKey := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &Config{
		GoogleApiKey: apiKey,
		Model:        getEnv("MODEL", "gemini-2.5-flash"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		Port:         getEnv("PORT", "8081"),
		NotesFile:    getEnv("NOTES_FILE", ".newsletter-notes.json"),
		ModelTimeout: getEnvAsDuration("MODEL_TIMEOUT", 0),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"*"}),
	}, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
