package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 90, cfg.LookbackDays)
	assert.Equal(t, 8, cfg.DispatchConcurrency)
	assert.Equal(t, 5*time.Second, cfg.SMSSendTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EMBER_ADDR", ":9090")
	t.Setenv("EMBER_TRACING_LOOKBACK_DAYS", "0")
	t.Setenv("EMBER_KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("EMBER_SMS_SEND_TIMEOUT", "2s")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Zero(t, cfg.LookbackDays, "zero disables the lookback cap")
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.SMSSendTimeout)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("EMBER_TRACING_LOOKBACK_DAYS", "-5")
	t.Setenv("EMBER_SMS_SEND_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, 90, cfg.LookbackDays)
	assert.Equal(t, 5*time.Second, cfg.SMSSendTimeout)
}
