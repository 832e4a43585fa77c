package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbt/pkg/domain"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"SBT_ADDR", "SBT_STORE", "SBT_ISSUER", "SBT_BASE_URI", "SBT_NAME", "SBT_SYMBOL", "ENVIRONMENT", "TOKEN_TTL", "KAFKA_BROKERS", "AUDIT_TOPIC", "AUDIT_CONSUMER_GROUP", "JWT_SIGNING_KEY", "SBT_KYC_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, domain.Account("issuer"), cfg.Registry.Issuer)
	assert.Equal(t, "http://localhost/", cfg.Registry.BaseURI)
	assert.Equal(t, "SBT", cfg.Registry.Name)
	assert.Equal(t, "SBT", cfg.Registry.Symbol)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "sbt.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, "sbt-audit-projector", cfg.Kafka.ConsumerGroup)
	assert.Equal(t, uint8(1), cfg.Registry.KYCLevel)
	assert.False(t, cfg.KafkaEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SBT_ADDR", ":9090")
	t.Setenv("SBT_ISSUER", "deployer")
	t.Setenv("SBT_BASE_URI", "https://meta.example/")
	t.Setenv("SBT_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TOKEN_TTL", "90")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("SBT_KYC_LEVEL", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, domain.Account("deployer"), cfg.Registry.Issuer)
	assert.Equal(t, "https://meta.example/", cfg.Registry.BaseURI)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 90*time.Second, cfg.TokenTTL)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, uint8(3), cfg.Registry.KYCLevel)
}

func TestFromEnvRejectsInvalidSettings(t *testing.T) {
	t.Run("kyc level out of range", func(t *testing.T) {
		t.Setenv("SBT_KYC_LEVEL", "256")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "SBT_KYC_LEVEL")
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("SBT_STORE", "mongo")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "unknown SBT_STORE")
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("SBT_STORE", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("malformed issuer", func(t *testing.T) {
		t.Setenv("SBT_STORE", "")
		t.Setenv("SBT_ISSUER", "not an account")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "SBT_ISSUER")
	})

	t.Run("default signing key outside local", func(t *testing.T) {
		t.Setenv("SBT_STORE", "")
		t.Setenv("SBT_ISSUER", "")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SIGNING_KEY", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "JWT_SIGNING_KEY")
	})
}
