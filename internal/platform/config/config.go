// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs to talk to its providers.
type Config struct {
	Addr string

	// SEC EDGAR requires a descriptive User-Agent on every request.
	SECUserAgent string
	SECBaseURL   string
	SECDataURL   string

	WikidataBaseURL string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig

	LogLevel string
}

// RedisConfig configures the optional knowledge-graph entity cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional extraction store.
type PostgresConfig struct {
	URL string
}

// KafkaConfig configures the optional audit publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables with dev defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("SECTRACKER_ADDR", ":8080"),
		SECUserAgent:      envOr("SEC_USER_AGENT", "sectracker research@example.com"),
		SECBaseURL:        envOr("SEC_BASE_URL", "https://www.sec.gov"),
		SECDataURL:        envOr("SEC_DATA_URL", "https://data.sec.gov"),
		WikidataBaseURL:   envOr("WIKIDATA_BASE_URL", "https://www.wikidata.org"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: envOr("OPENROUTER_BASE", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   envOr("OPENROUTER_MODEL", "anthropic/claude-3-haiku"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envOrInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envOrInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Topic: envOr("AUDIT_TOPIC", "sectracker.lookup.audit"),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
