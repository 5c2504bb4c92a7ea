package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	GoEnv       string
	LogLevel    string
	Migrations  bool

	JWTSecret                     string
	JWTAudience                   string
	AuthTokenExpirationMinutes    int
	RefreshTokenExpirationDays    int
	VerificationExpirationMinutes int
	TokenPurgeSchedule            string

	CORSAllowedOrigins []string

	StorageBackend     string // "local" or "s3"
	FileStorageDir     string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	MailTransport  string // "log", "smtp" or "kafka"
	MailFrom       string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	KafkaBrokers   []string
	KafkaMailTopic string

	TokenStore string // "gorm" or "redis"
	RedisAddr  string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production the environment is set directly
			logrus.Debug("No .env file found, using system environment variables")
		}
	} else {
		logrus.WithField("file", envFile).Info("Loaded configuration")
	}

	config := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		GoEnv:       getEnv("GO_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Migrations:  getEnvBool("MIGRATIONS", false),

		JWTSecret:                     getEnv("JWT_SECRET", ""),
		JWTAudience:                   getEnv("JWT_AUDIENCE", "kendalls-studio-api"),
		AuthTokenExpirationMinutes:    getEnvInt("AUTH_TOKEN_EXPIRATION_MINUTES", 15),
		RefreshTokenExpirationDays:    getEnvInt("REFRESH_TOKEN_EXPIRATION_DAYS", 7),
		VerificationExpirationMinutes: getEnvInt("VERIFICATION_EXPIRATION_MINUTES", 15),
		TokenPurgeSchedule:            getEnv("TOKEN_PURGE_SCHEDULE", "@hourly"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		StorageBackend:     getEnv("STORAGE_BACKEND", "local"),
		FileStorageDir:     getEnv("FILE_STORAGE_DIR", "./uploads"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		MailTransport:  getEnv("MAIL_TRANSPORT", "log"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@kendalls-studio.local"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		KafkaBrokers:   getEnvList("KAFKA_BROKERS", nil),
		KafkaMailTopic: getEnv("KAFKA_MAIL_TOPIC", "mail.outbound"),

		TokenStore: getEnv("TOKEN_STORE", "gorm"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && !c.IsTest() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.StorageBackend == "s3" && c.AWSS3Bucket == "" {
		return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_BACKEND=s3")
	}
	if c.MailTransport == "kafka" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when MAIL_TRANSPORT=kafka")
	}
	if c.MailTransport == "smtp" && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when MAIL_TRANSPORT=smtp")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// SigningKey returns the HMAC key used to sign and verify tokens. Outside
// production an unset secret falls back to a fixed development key.
func (c *Config) SigningKey() []byte {
	if c.JWTSecret == "" {
		return []byte("development-only-signing-key")
	}
	return []byte(c.JWTSecret)
}

// GetConfig returns the loaded configuration
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (used by main and tests)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logrus.WithField("key", key).Warnf("Invalid integer %q, using default %d", value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
