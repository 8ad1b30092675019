package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Blessing transition policies
const (
	BlessingPolicyOpen   = "open"
	BlessingPolicyStrict = "strict"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// External drive listing
	Drive DriveConfig

	// Folder ingestion
	Ingest IngestConfig

	// Moderation rules
	Moderation ModerationConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// DriveConfig holds credentials for the external file listing service
type DriveConfig struct {
	APIKey          string
	CredentialsFile string
	Endpoint        string // overrides the public API base URL
	Timeout         time.Duration
}

// IngestConfig controls how folder listings become media rows
type IngestConfig struct {
	PageSize    int64
	FollowPages bool
	MaxPages    int  // 0 = no limit
	Strict      bool // fail instead of skipping image/video files without a content link
	Workers     int
}

// ModerationConfig selects the blessing transition policy
type ModerationConfig struct {
	BlessingPolicy string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "event_gallery"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Drive: DriveConfig{
			APIKey:          getEnv("DRIVE_API_KEY", ""),
			CredentialsFile: getEnv("DRIVE_CREDENTIALS_FILE", ""),
			Endpoint:        getEnv("DRIVE_ENDPOINT", ""),
			Timeout:         getDurationEnv("DRIVE_TIMEOUT", 20*time.Second),
		},
		Ingest: IngestConfig{
			PageSize:    getInt64Env("INGEST_PAGE_SIZE", 100),
			FollowPages: getBoolEnv("INGEST_FOLLOW_PAGES", true),
			MaxPages:    getIntEnv("INGEST_MAX_PAGES", 0),
			Strict:      getBoolEnv("INGEST_STRICT", false),
			Workers:     getIntEnv("INGEST_WORKERS", 4),
		},
		Moderation: ModerationConfig{
			BlessingPolicy: getEnv("MODERATION_BLESSING_POLICY", BlessingPolicyOpen),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Ingest.PageSize <= 0 || c.Ingest.PageSize > 1000 {
		return fmt.Errorf("INGEST_PAGE_SIZE must be between 1 and 1000")
	}
	if c.Ingest.MaxPages < 0 {
		return fmt.Errorf("INGEST_MAX_PAGES must not be negative")
	}
	switch c.Moderation.BlessingPolicy {
	case BlessingPolicyOpen, BlessingPolicyStrict:
	default:
		return fmt.Errorf("MODERATION_BLESSING_POLICY must be %q or %q", BlessingPolicyOpen, BlessingPolicyStrict)
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
