package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sbt/pkg/domain"
)

// Store backends selectable with SBT_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	RequestTimeout time.Duration

	Registry Registry
	Store    string

	JWTSigningKey string
	TokenTTL      time.Duration

	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
}

// Registry holds the fixed parameters a credential registry is constructed with.
type Registry struct {
	Issuer   domain.Account
	BaseURI  string
	Name     string
	Symbol   string
	KYCLevel uint8
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event producer. Empty Brokers disables it.
// ConsumerGroup is used by the audit projector.
type KafkaConfig struct {
	Brokers       string
	AuditTopic    string
	Partitions    int32
	ConsumerGroup string
}

var TokenTTL = 15 * time.Minute

// DefaultRedisConfig returns pool settings suitable for a single service instance.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:           envOr("SBT_ADDR", ":8080"),
		Environment:    envOr("ENVIRONMENT", "local"),
		RequestTimeout: durationOr("REQUEST_TIMEOUT", 10*time.Second),
		Store:          strings.ToLower(envOr("SBT_STORE", StoreMemory)),
		// Use a default for development - should be overridden in production
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:      durationOr("TOKEN_TTL", TokenTTL),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis:         DefaultRedisConfig(),
		Kafka: KafkaConfig{
			Brokers:       os.Getenv("KAFKA_BROKERS"),
			AuditTopic:    envOr("AUDIT_TOPIC", "sbt.audit"),
			Partitions:    3,
			ConsumerGroup: envOr("AUDIT_CONSUMER_GROUP", "sbt-audit-projector"),
		},
	}
	cfg.Redis.URL = os.Getenv("REDIS_URL")

	issuer, err := domain.ParseAccount(envOr("SBT_ISSUER", "issuer"))
	if err != nil {
		return Server{}, fmt.Errorf("SBT_ISSUER: %w", err)
	}
	level, err := strconv.ParseUint(envOr("SBT_KYC_LEVEL", "1"), 10, 8)
	if err != nil {
		return Server{}, fmt.Errorf("SBT_KYC_LEVEL: %w", err)
	}
	cfg.Registry = Registry{
		Issuer:   issuer,
		BaseURI:  envOr("SBT_BASE_URI", "http://localhost/"),
		Name:     envOr("SBT_NAME", "SBT"),
		Symbol:   envOr("SBT_SYMBOL", "SBT"),
		KYCLevel: uint8(level),
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks that the selected store has the connection settings it needs.
func (c Server) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("SBT_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("SBT_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown SBT_STORE %q", c.Store)
	}
	if c.Environment != "local" && c.JWTSigningKey == "dev-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SIGNING_KEY must be set outside local environment")
	}
	return nil
}

// KafkaEnabled reports whether audit events should be published to Kafka.
func (c Server) KafkaEnabled() bool {
	return c.Kafka.Brokers != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	// Bare integers are read as seconds.
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
