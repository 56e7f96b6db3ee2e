package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/serialpm/serialpm-api/internal/constants"
)

const defaultJWTSecret = "default-secret-key-change-me"

type Config struct {
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxIdleConns int
	DBMaxOpenConns int

	ServerPort  string
	GinMode     string
	CORSOrigins []string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string
	SentryDSN string

	PushBufferSize   int
	// PushRequireToken rejects /ws upgrades that carry no bearer token.
	PushRequireToken bool
	UploadDir        string
	OpenAIAPIKey     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "serialpm"),
		DBPassword:       getEnv("DB_PASSWORD", "serialpm"),
		DBName:           getEnv("DB_NAME", "serialpm"),
		DBSSLMode:        getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:   getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		ServerPort:       getEnv("SERVER_PORT", "9000"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:         getEnvAsDuration("TOKEN_TTL", constants.DefaultTokenTTL),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		PushBufferSize:   getEnvAsInt("PUSH_BUFFER_SIZE", constants.DefaultPushBufferSize),
		PushRequireToken: getEnvAsBool("PUSH_REQUIRE_TOKEN", false),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Validate checks settings that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed in release mode")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.PushBufferSize <= 0 {
		return fmt.Errorf("PUSH_BUFFER_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
