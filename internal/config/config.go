package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Detector DetectorConfig
	Azure    AzureConfig
	Storage  StorageConfig
	Alerting AlertingConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DetectorConfig contains anomaly detection thresholds and scheduling
type DetectorConfig struct {
	ZScoreThreshold     float64
	MinCostThreshold    float64
	ConfidenceThreshold float64
	DefaultDaysBack     int
	// Schedule is an optional cron spec for unattended detection runs
	Schedule string
	// Subscriptions analyzed by scheduled runs
	Subscriptions []string
}

// AzureConfig contains Azure service principal credentials
type AzureConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// StorageConfig contains result blob storage configuration
type StorageConfig struct {
	ConnectionString string
	Container        string
}

// AlertingConfig contains alert delivery configuration
type AlertingConfig struct {
	SlackWebhookURL string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Detector: DetectorConfig{
			ZScoreThreshold:     getEnvAsFloat("Z_SCORE_THRESHOLD", 2.0),
			MinCostThreshold:    getEnvAsFloat("MIN_COST_THRESHOLD", 10.0),
			ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.8),
			DefaultDaysBack:     getEnvAsInt("DETECTOR_DAYS_BACK", 30),
			Schedule:            getEnv("DETECTOR_SCHEDULE", ""),
			Subscriptions:       getEnvAsList("DETECTOR_SUBSCRIPTIONS"),
		},
		Azure: AzureConfig{
			TenantID:     getEnv("AZURE_TENANT_ID", ""),
			ClientID:     getEnv("AZURE_CLIENT_ID", ""),
			ClientSecret: getEnv("AZURE_CLIENT_SECRET", ""),
		},
		Storage: StorageConfig{
			ConnectionString: getEnv("STORAGE_CONNECTION_STRING", ""),
			Container:        getEnv("CONTAINER_NAME", "anomalies"),
		},
		Alerting: AlertingConfig{
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "costwatch"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Detector.ZScoreThreshold <= 0 {
		return fmt.Errorf("invalid z-score threshold: %f", c.Detector.ZScoreThreshold)
	}
	if c.Detector.MinCostThreshold < 0 {
		return fmt.Errorf("invalid minimum cost threshold: %f", c.Detector.MinCostThreshold)
	}
	if c.Detector.ConfidenceThreshold < 0 || c.Detector.ConfidenceThreshold > 1 {
		return fmt.Errorf("invalid confidence threshold: %f", c.Detector.ConfidenceThreshold)
	}
	if c.Detector.DefaultDaysBack < 1 {
		return fmt.Errorf("invalid default days back: %d", c.Detector.DefaultDaysBack)
	}

	if c.Detector.Schedule != "" && len(c.Detector.Subscriptions) == 0 {
		return fmt.Errorf("DETECTOR_SCHEDULE requires DETECTOR_SUBSCRIPTIONS")
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
