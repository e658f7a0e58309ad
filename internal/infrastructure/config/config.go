// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppEnv     string `validate:"oneof=development production"`
	AppVersion string

	// Server
	Port         string `validate:"required"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string `validate:"required"`
	MongoDB       string `validate:"required"`
	MongoUser     string
	MongoPassword string

	// Ingestion
	WriteBatchSize int `validate:"min=1,max=1000"`
	UploadMaxMB    int `validate:"min=1"`

	// Queries
	QueryLimit int           `validate:"min=1"`
	CacheTTL   time.Duration `validate:"min=0"`

	// Aerodrome reference database, enrichment is skipped when empty
	PostgresDSN string

	// Raw file archive, disabled when the bucket is empty
	StorageBucket          string
	StorageCredentials     string
	StorageCredentialsFile string

	// HTTP rate limiting
	RateLimitRPS   int `validate:"min=1"`
	RateLimitBurst int `validate:"min=1"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppEnv:       getEnv("APP_ENV", "production"),
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "movimento"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		WriteBatchSize: getEnvAsInt("WRITE_BATCH_SIZE", 499),
		UploadMaxMB:    getEnvAsInt("UPLOAD_MAX_MB", 32),

		QueryLimit: getEnvAsInt("QUERY_LIMIT", 500),
		CacheTTL:   time.Duration(getEnvAsInt("CACHE_TTL", 300)) * time.Second,

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		StorageBucket:          getEnv("STORAGE_BUCKET", ""),
		StorageCredentials:     getEnv("STORAGE_CREDENTIALS", ""),
		StorageCredentialsFile: getEnv("STORAGE_CREDENTIALS_FILE", ""),

		RateLimitRPS:   getEnvAsInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
