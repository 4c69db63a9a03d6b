package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. FromEnv keeps main lean; every
// value has a development default so the service starts with no environment.
type Config struct {
	Addr string

	// PostgresDSN selects the durable stores. Empty means in-memory stores.
	PostgresDSN string

	// RedisURL enables the raw-payload cache. Empty disables caching.
	RedisURL string

	// KafkaBrokers enables the audit outbox publisher. Empty disables it.
	KafkaBrokers []string
	AuditTopic   string

	// JWTVerificationKey verifies bearer tokens on the write surface. The
	// subject claim becomes the recorded actor; no further authentication
	// happens here.
	JWTVerificationKey string

	// PayloadCacheTTL bounds how long fetched registry payloads are reused
	// before the external source is contacted again.
	PayloadCacheTTL time.Duration

	// Registry fetcher settings. An empty Companies House key disables the
	// secondary-registry fetcher; GLEIF needs no credentials.
	GLEIFBaseURL          string
	CompaniesHouseBaseURL string
	CompaniesHouseAPIKey  string
}

// Redis holds connection tuning for the payload cache client.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("MASTERFILE_ADDR", ":8080"),
		PostgresDSN:        os.Getenv("MASTERFILE_POSTGRES_DSN"),
		RedisURL:           os.Getenv("MASTERFILE_REDIS_URL"),
		AuditTopic:         envOr("MASTERFILE_AUDIT_TOPIC", "masterfile.audit.events"),
		JWTVerificationKey: envOr("MASTERFILE_JWT_KEY", "dev-secret-key-change-in-production"),
		PayloadCacheTTL:    envDurationOr("MASTERFILE_PAYLOAD_CACHE_TTL", 15*time.Minute),

		GLEIFBaseURL:          envOr("MASTERFILE_GLEIF_BASE_URL", "https://api.gleif.org"),
		CompaniesHouseBaseURL: envOr("MASTERFILE_CH_BASE_URL", "https://api.company-information.service.gov.uk"),
		CompaniesHouseAPIKey:  os.Getenv("MASTERFILE_CH_API_KEY"),
	}
	if brokers := os.Getenv("MASTERFILE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitCSV(brokers)
	}
	return cfg
}

// RedisConfig derives the cache client settings from the config.
func (c Config) RedisConfig() Redis {
	return Redis{
		URL:          c.RedisURL,
		PoolSize:     envIntOr("MASTERFILE_REDIS_POOL_SIZE", 10),
		MinIdleConns: envIntOr("MASTERFILE_REDIS_MIN_IDLE", 2),
		DialTimeout:  envDurationOr("MASTERFILE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDurationOr("MASTERFILE_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDurationOr("MASTERFILE_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
