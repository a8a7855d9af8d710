package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	MongoDB   MongoDBConfig
	Chat      ChatConfig
	Email     EmailConfig
	S3        S3Config
	InfluxDB  InfluxDBConfig
	Analytics AnalyticsConfig
	Reports   ReportsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	AuthSource string // Database to authenticate against (default: admin)
}

// ChatConfig holds the assistant provider settings
type ChatConfig struct {
	Provider    string // "gemini" or "openai"
	GeminiKey   string
	GeminiModel string
	OpenAIKey   string
	OpenAIModel string
	Temperature float64
	MaxTokens   int
}

// EmailConfig holds SendGrid email configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// S3Config holds S3 connection details for the report archive
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for S3-compatible services like MinIO
}

// InfluxDBConfig holds InfluxDB connection details for completion events
type InfluxDBConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// AnalyticsConfig controls how progress statistics are bucketed
type AnalyticsConfig struct {
	Timezone string // IANA name, empty means the server's local zone
}

// ReportsConfig holds the local report archive used when S3 is not configured
type ReportsConfig struct {
	ArchivePath string // Directory for archived reports
	BaseURL     string // URL the archive is served under
}

// Enabled reports whether MongoDB connection details are present
func (c MongoDBConfig) Enabled() bool {
	return c.URI != "" || c.Username != ""
}

// Enabled reports whether SendGrid is configured
func (c EmailConfig) Enabled() bool {
	return c.APIKey != "" && c.FromEmail != ""
}

// Enabled reports whether the report archive is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Enabled reports whether completion events should be written
func (c InfluxDBConfig) Enabled() bool {
	return c.URL != "" && c.Token != "" && c.Org != "" && c.Bucket != ""
}

// Location resolves the configured timezone
func (c AnalyticsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8085"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "planmate"),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", "localhost"),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "planmate"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		Chat: ChatConfig{
			Provider:    getEnv("CHAT_PROVIDER", "gemini"),
			GeminiKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("CHAT_TEMPERATURE", 0.7),
			MaxTokens:   getEnvInt("CHAT_MAX_TOKENS", 1000),
		},
		Email: EmailConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
			FromName:  getEnv("SENDGRID_FROM_NAME", "PlanMate"),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Optional for MinIO/custom S3
		},
		InfluxDB: InfluxDBConfig{
			URL:    getEnv("INFLUXDB2_URL", ""),
			Token:  getEnv("INFLUXDB2_TOKEN", ""),
			Org:    getEnv("INFLUXDB2_ORG", ""),
			Bucket: getEnv("INFLUXDB2_BUCKET", ""),
		},
		Analytics: AnalyticsConfig{
			Timezone: getEnv("ANALYTICS_TIMEZONE", ""),
		},
		Reports: ReportsConfig{
			ArchivePath: getEnv("REPORT_ARCHIVE_PATH", "reports"),
			BaseURL:     getEnv("REPORT_BASE_URL", "http://localhost:8085/reports"),
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.Chat.Provider != "gemini" && config.Chat.Provider != "openai" {
		return fmt.Errorf("CHAT_PROVIDER must be gemini or openai, got %q", config.Chat.Provider)
	}
	if _, err := config.Analytics.Location(); err != nil {
		return err
	}
	// Mongo, SendGrid, S3, InfluxDB and the chat keys are optional; features degrade when missing
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
