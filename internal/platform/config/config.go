package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	JWTSigningKey string

	// SMSGatewayURL is the base URL of the external SMS channel. Empty
	// disables automated SMS sends; those partners fall into the
	// manual-required bucket.
	SMSGatewayURL    string
	SMSGatewayAPIKey string
	SMSSendTimeout   time.Duration

	// LookbackDays bounds the exposure window for reporters with no prior
	// screen on record. Zero means all encounters ever logged.
	LookbackDays int

	// DispatchConcurrency bounds the per-partner send fan-out.
	DispatchConcurrency int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:                envOr("EMBER_ADDR", ":8080"),
		PostgresDSN:         os.Getenv("EMBER_POSTGRES_DSN"),
		RedisURL:            os.Getenv("EMBER_REDIS_URL"),
		KafkaBrokers:        splitList(os.Getenv("EMBER_KAFKA_BROKERS")),
		JWTSigningKey:       envOr("EMBER_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SMSGatewayURL:       os.Getenv("EMBER_SMS_GATEWAY_URL"),
		SMSGatewayAPIKey:    os.Getenv("EMBER_SMS_GATEWAY_API_KEY"),
		SMSSendTimeout:      envDuration("EMBER_SMS_SEND_TIMEOUT", 5*time.Second),
		LookbackDays:        envInt("EMBER_TRACING_LOOKBACK_DAYS", 90),
		DispatchConcurrency: envInt("EMBER_DISPATCH_CONCURRENCY", 8),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
