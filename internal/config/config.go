package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LookupBackendLake fetches ticker data through the data-lake HTTP proxy;
// LookupBackendS3 reads the backing bucket directly with AWS credentials.
const (
	LookupBackendLake = "lake"
	LookupBackendS3   = "s3"
)

// Config holds application configuration
type Config struct {
	Port     int
	DevMode  bool
	LogLevel string
	LogFile  string

	DatabasePath string

	// External services
	AuthURL   string
	LakeURL   string
	TrendsURL string

	// Data-lake request scope
	LakeTerm      string
	LakeTopic     string
	LakeSubFolder string

	// Direct S3 backend
	LookupBackend string
	S3Bucket      string
	AWSRegion     string

	CatalogPath string
	SessionTTL  time.Duration

	NewsPanelsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		DatabasePath: getEnv("DATABASE_PATH", "./data/guardian.db"),

		AuthURL:   getEnv("AUTH_URL", "https://afzpve4n13.execute-api.ap-southeast-2.amazonaws.com"),
		LakeURL:   getEnv("LAKE_URL", "https://afzpve4n13.execute-api.ap-southeast-2.amazonaws.com/lake_api"),
		TrendsURL: getEnv("TRENDS_URL", "https://afzpve4n13.execute-api.ap-southeast-2.amazonaws.com/H09A_FOXTROT"),

		LakeTerm:      getEnv("LAKE_TERM", "23t1"),
		LakeTopic:     getEnv("LAKE_TOPIC", "economic"),
		LakeSubFolder: getEnv("LAKE_SUBFOLDER", "F10A_ALPHA"),

		LookupBackend: getEnv("LOOKUP_BACKEND", LookupBackendLake),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		AWSRegion:     getEnv("AWS_REGION", "ap-southeast-2"),

		CatalogPath: getEnv("CATALOG_PATH", ""),
		SessionTTL:  time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 15)) * time.Minute,

		NewsPanelsEnabled: getEnvAsBool("NEWS_PANELS_ENABLED", false),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.AuthURL == "" {
		return fmt.Errorf("AUTH_URL is required")
	}
	if c.LakeURL == "" && c.LookupBackend == LookupBackendLake {
		return fmt.Errorf("LAKE_URL is required for the lake lookup backend")
	}
	if c.TrendsURL == "" {
		return fmt.Errorf("TRENDS_URL is required")
	}

	switch c.LookupBackend {
	case LookupBackendLake:
	case LookupBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 lookup backend")
		}
	default:
		return fmt.Errorf("unknown LOOKUP_BACKEND %q", c.LookupBackend)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
