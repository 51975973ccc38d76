package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the DWD open-data pollen report location.
const DefaultAPIURL = "https://opendata.dwd.de/climate_environment/health/alerts/s31fg.json"

// Config holds all settings, populated from environment variables.
type Config struct {
	APIURL       string
	FetchTimeout time.Duration
	RetryCount   int
	RetryDelay   time.Duration

	CachePath     string // empty means the per-user default location
	CacheDuration time.Duration

	LogLevel  string
	LogFormat string

	// pollend service settings.
	HTTPAddr        string
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration

	// Optional Kafka announcements (POLLEN_KAFKA_BROKERS enables them).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	fetchTimeout, err := parseDuration("POLLEN_FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("POLLEN_RETRY_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	cacheDuration, err := parseDuration("POLLEN_CACHE_DURATION", "1h")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("POLLEN_REFRESH_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	retryCount, err := parseInt("POLLEN_RETRY_COUNT", 3)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(os.Getenv("POLLEN_KAFKA_BROKERS"))

	cfg := &Config{
		APIURL:       envOrDefault("POLLEN_API_URL", DefaultAPIURL),
		FetchTimeout: fetchTimeout,
		RetryCount:   retryCount,
		RetryDelay:   retryDelay,

		CachePath:     os.Getenv("POLLEN_CACHE_PATH"),
		CacheDuration: cacheDuration,

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		RefreshInterval: refreshInterval,
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: len(kafkaBrokers) > 0,
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("POLLEN_KAFKA_TOPIC", "pollen-forecast-updates"),
	}

	if cfg.APIURL == "" {
		return nil, errors.New("POLLEN_API_URL must not be empty")
	}
	if cfg.RetryCount < 1 {
		return nil, errors.New("POLLEN_RETRY_COUNT must be at least 1")
	}
	if cfg.CacheDuration <= 0 {
		return nil, errors.New("POLLEN_CACHE_DURATION must be positive")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("POLLEN_KAFKA_TOPIC must not be empty when brokers are set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
