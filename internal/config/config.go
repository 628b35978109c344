package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	DefaultBaseURL      = "https://ggst-api-proxy.herokuapp.com"
	DefaultUtilsBaseURL = "https://ggst-utils-default-rtdb.europe-west1.firebasedatabase.app"
)

type Config struct {
	// hex encoded session token, sent verbatim inside every request envelope
	Token          string
	BaseURL        string
	UtilsBaseURL   string
	DBPath         string
	ServerPort     string
	LogLevel       string
	PersistReplays bool
	RequestTimeout time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		Token:          getEnv("GGST_TOKEN", ""),
		BaseURL:        getEnv("GGST_BASE_URL", DefaultBaseURL),
		UtilsBaseURL:   getEnv("GGST_UTILS_BASE_URL", DefaultUtilsBaseURL),
		DBPath:         getEnv("DB_PATH", "replays.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PersistReplays: getEnvBool("PERSIST_REPLAYS", true),
		RequestTimeout: getEnvDuration("GGST_REQUEST_TIMEOUT", 10*time.Second),
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("GGST_TOKEN is required")
	}
	if _, err := cfg.TokenBytes(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("persist_replays", cfg.PersistReplays).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) TokenBytes() ([]byte, error) {
	b, err := hex.DecodeString(c.Token)
	if err != nil {
		return nil, fmt.Errorf("GGST_TOKEN must be hex: %w", err)
	}
	return b, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
