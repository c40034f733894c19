package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string
	HTTPPort  int

	Database DatabaseConfig
	Auth     AuthConfig

	CORSAllowedOrigins []string
	OTLPEndpoint       string
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LoadDotEnv reads .env into the process environment. A missing file is
// reported to the caller, which decides whether that matters.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// Load builds the configuration from the environment.
func Load() (Config, error) {
	appEnv := getEnv("APP_ENV", "dev")

	cfg := Config{
		AppEnv:    appEnv,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		HTTPPort:  getEnvInt("HTTP_PORT", 8080),
		Database: DatabaseConfig{
			DSN:             os.Getenv("DB_DSN_PRIMARY"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("AUTO_MIGRATE", appEnv == "dev"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  getEnvDuration("JWT_TTL", 72*time.Hour),
		},
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("DB_DSN_PRIMARY environment variable is not set")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET environment variable is not set")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
