package app

import (
	"os"
	"strings"
	"time"
)

// Config описывает настройки запуска приложения.
// Пустой PostgresDSN означает in-memory хранилище,
// пустой KafkaBrokers — работу без публикации событий.
type Config struct {
	HTTPAddr           string
	MetricsAddr        string
	PostgresDSN        string
	KafkaBrokers       []string
	OutboxPollInterval time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		MetricsAddr:        ":9090",
		OutboxPollInterval: time.Second,
	}
}

// LoadConfig читает конфигурацию из переменных окружения SHOP_*.
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.HTTPAddr = getenv("SHOP_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = getenv("SHOP_METRICS_ADDR", cfg.MetricsAddr)
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("SHOP_POSTGRES_DSN"))
	cfg.KafkaBrokers = splitCSV(os.Getenv("SHOP_KAFKA_BROKERS"))

	if raw := strings.TrimSpace(os.Getenv("SHOP_OUTBOX_POLL_INTERVAL")); raw != "" {
		if interval, err := time.ParseDuration(raw); err == nil && interval > 0 {
			cfg.OutboxPollInterval = interval
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
