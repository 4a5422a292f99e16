// Package config загружает конфигурацию сервиса из переменных окружения
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUpstreamURL адрес workflow прогнозирования по умолчанию
const DefaultUpstreamURL = "http://localhost:5678/webhook/demand-forecast"

// Config содержит конфигурацию сервиса
type Config struct {
	ServerAddr      string
	UpstreamURL     string
	UpstreamTimeout time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisChannel    string
	LogLevel        string
	LogFormat       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// Load читает .env (если он есть) и переменные окружения.
// Переменные окружения процесса имеют приоритет над .env.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":3000"),
		UpstreamURL:     getEnv("UPSTREAM_URL", DefaultUpstreamURL),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisChannel:    getEnv("REDIS_CHANNEL", "predictions:updated"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 45*time.Second),
		IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c Config) Validate() error {
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid UPSTREAM_URL %q", c.UpstreamURL)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if c.WriteTimeout > 0 && c.WriteTimeout <= c.UpstreamTimeout {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must exceed UPSTREAM_TIMEOUT (%s)", c.WriteTimeout, c.UpstreamTimeout)
	}
	return nil
}

// RedisEnabled включена ли публикация событий
func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленную переменную окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration понимает "30s", "1m" и целое число секунд
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
