package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/jma-weather/internal/weather"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level

	// Upstream JMA site and outbound client settings.
	BaseURL     string
	HTTPTimeout time.Duration
	UserAgent   string

	// Circuit breaker around upstream calls.
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	Port string

	// Scheduled export.
	ExportStations     []weather.Station
	ExportInterval     time.Duration
	ExportDir          string
	ExportLookbackDays int
}

// LoadDotEnv loads a .env file if one exists. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Info("could not load .env file", "err", err)
	}
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := ParseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.BaseURL = strings.TrimRight(getenvDefault("JMA_BASE_URL", "https://www.data.jma.go.jp"), "/")
	cfg.UserAgent = getenvDefault("USER_AGENT", "jma-weather/1.0")

	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cfg.BreakerMaxFailures = getenvInt("BREAKER_MAX_FAILURES", 5)
	if cfg.BreakerMaxFailures <= 0 {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: must be positive")
	}
	cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", "1m")
	if err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.ExportStations, err = ParseStations(os.Getenv("EXPORT_STATIONS"))
	if err != nil {
		return nil, err
	}
	cfg.ExportInterval, err = getenvDuration("EXPORT_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}
	cfg.ExportDir = getenvDefault("EXPORT_DIR", "./exports")
	cfg.ExportLookbackDays = getenvInt("EXPORT_LOOKBACK_DAYS", 7)
	if cfg.ExportLookbackDays < 2 {
		return nil, fmt.Errorf("invalid EXPORT_LOOKBACK_DAYS: need at least 2 days")
	}

	return cfg, nil
}

// ParseStations reads a comma separated list of code:id pairs, e.g. "44:47662,62:47772".
func ParseStations(s string) ([]weather.Station, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var stations []weather.Station
	for _, item := range strings.Split(s, ",") {
		code, id, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok {
			return nil, fmt.Errorf("invalid station %q: expected code:id", item)
		}
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("invalid station id %q: %w", id, err)
		}
		stations = append(stations, weather.Station{Code: code, ID: n})
	}

	return stations, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
