package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr        string `validate:"required"`
	DBPath            string `validate:"required"`
	StorageQuotaBytes int64  `validate:"gt=0"`
	SeedFile          string
	MaxVisibleItems   int `validate:"gt=0"`

	// TextBackend serves classification and outfit selection. Illustration
	// always goes to Gemini.
	TextBackend       string `validate:"oneof=gemini claude ollama"`
	GeminiAPIKey      string `validate:"required"`
	GeminiTextModel   string
	GeminiImageModel  string
	GeminiBaseURL     string
	ClaudeAPIKey      string `validate:"required_if=TextBackend claude"`
	ClaudeModel       string
	OllamaHost        string
	OllamaModel       string
	RequestsPerMinute int   `validate:"gte=0"`
	ImageCacheBytes   int64 `validate:"gt=0"`

	PhotoBackend      string `validate:"oneof=local s3"`
	PhotoPath         string `validate:"required_if=PhotoBackend local"`
	S3Bucket          string `validate:"required_if=PhotoBackend s3"`
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFile     string
	LogFormat   string `validate:"oneof=json text"`
	SentryDSN   string
	Environment string
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are used for variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "/data/closet.db"),
		StorageQuotaBytes: getEnvInt64("STORAGE_QUOTA_BYTES", 5*1024*1024),
		SeedFile:          getEnv("SEED_FILE", ""),
		MaxVisibleItems:   int(getEnvInt64("MAX_VISIBLE_ITEMS", 12)),

		TextBackend:           getEnv("GATEWAY_BACKEND", "gemini"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:       getEnv("GEMINI_TEXT_MODEL", ""),
		GeminiImageModel:      getEnv("GEMINI_IMAGE_MODEL", ""),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", ""),
		ClaudeAPIKey:          getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:           getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		OllamaHost:            getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:           getEnv("OLLAMA_MODEL", "llava"),
		RequestsPerMinute:     int(getEnvInt64("GATEWAY_REQUESTS_PER_MINUTE", 0)),
		ImageCacheBytes:       getEnvInt64("IMAGE_CACHE_BYTES", 64*1024*1024),

		PhotoBackend:      getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:         getEnv("PHOTO_LOCAL_PATH", "/data/assets"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getEnvInt64 falls back to defaultVal when the variable is unset or not a number.
func getEnvInt64(key string, defaultVal int64) int64 {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}
