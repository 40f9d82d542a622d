package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, "BK", cfg.Booking.ReferencePrefix)
	assert.Equal(t, int64(65536), cfg.Stripe.MaxBodyBytes)
	assert.Contains(t, cfg.Database.DSN, "dbname=tourly_db")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,")
	t.Setenv("JWT_EXPIRES_IN", "120")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "not-a-duration")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.GetServerAddress())
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Minute, cfg.JWT.JWTExpiresIn)
	assert.Equal(t, 30*time.Second, cfg.Database.ConnMaxIdleTime)
	assert.True(t, cfg.PaymentsEnabled())
}

func TestModeHelpers(t *testing.T) {
	cfg := &Config{GinMode: "release"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}
