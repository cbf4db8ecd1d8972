package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/parleychat/parley/pkg/jwtx"
)

// Config is built once at process start and passed by reference into the
// components that need it. There is no package-level config state.
type Config struct {
	Brokers        []string // Required: Kafka bootstrap brokers
	RequestsTopic  string   // Inbound command topic (default: identity.requests)
	ResponsesTopic string   // Outbound response topic (default: identity.responses)
	GroupID        string   // Consumer group id (default: identity-service)

	DatabaseFile string // Path to SQLite database file (default: ./identity.db)

	JWTSecret  string        // Required: shared HS256 signing secret
	Issuer     string        // Token issuer claim (default: identity-service)
	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 24h)

	Pepper          string        // Optional: pepper mixed into password hashes
	ConfirmationTTL time.Duration // Confirmation code lifetime (default: 24h)

	SMTPHost     string // Mail relay; when empty, codes are logged instead of mailed
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	OutboxSize          int // Pending notification capacity (default: 256)
	NotifyRatePerMinute int // Outbound mail rate cap (default: 60)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // debug, info, warn, error (default: info)
	LogFormat           string        // json, text (default: json)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Brokers:        splitList(os.Getenv("IDENTITY_KAFKA_BROKERS")),
		RequestsTopic:  getEnvOrDefault("IDENTITY_TOPIC_REQUESTS", "identity.requests"),
		ResponsesTopic: getEnvOrDefault("IDENTITY_TOPIC_RESPONSES", "identity.responses"),
		GroupID:        getEnvOrDefault("IDENTITY_GROUP_ID", "identity-service"),

		DatabaseFile: getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),

		JWTSecret:  os.Getenv("IDENTITY_JWT_SECRET"),
		Issuer:     getEnvOrDefault("IDENTITY_ISSUER", "identity-service"),
		AccessTTL:  getEnvDurationOrDefault("IDENTITY_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("IDENTITY_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		Pepper:          os.Getenv("IDENTITY_PEPPER"),
		ConfirmationTTL: getEnvDurationOrDefault("IDENTITY_CONFIRMATION_TTL", 24*time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", os.Getenv("SMTP_USER")),

		OutboxSize:          getEnvIntOrDefault("IDENTITY_OUTBOX_SIZE", 256),
		NotifyRatePerMinute: getEnvIntOrDefault("IDENTITY_NOTIFY_RATE", 60),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	// Plain integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}
