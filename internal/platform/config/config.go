package config

import (
	"os"
	"time"
)

// Config captures process-level configuration. Every field has a development
// default except secrets, which stay empty and are validated by the components
// that need them.
type Config struct {
	Addr string

	// Identity provider (REST).
	IdentityBaseURL string
	IdentityAPIKey  string

	// Profile store. Empty DatabaseURL selects the in-memory store.
	DatabaseURL string

	// Email dispatch.
	ResendAPIKey  string
	EmailFrom     string
	ReplyTo       string
	MessageStream string

	// Continuation targets embedded in provider-minted links.
	VerificationContinueURL  string
	PasswordResetContinueURL string

	// Registration lock. Empty RedisURL selects the in-process locker.
	RedisURL string
	LockTTL  time.Duration

	// Audit events. Empty brokers disable the publisher.
	KafkaBrokers string
	AuditTopic   string

	AdminPIN string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:                     envOr("ACCOUNT_GATEWAY_ADDR", ":8080"),
		IdentityBaseURL:          envOr("IDENTITY_BASE_URL", "http://localhost:9099"),
		IdentityAPIKey:           os.Getenv("IDENTITY_API_KEY"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		ResendAPIKey:             os.Getenv("RESEND_API_KEY"),
		EmailFrom:                os.Getenv("EMAIL_FROM"),
		ReplyTo:                  envOr("REPLY_TO", "support@schoolchow.com"),
		MessageStream:            envOr("RESEND_MESSAGE_STREAM", "outbound"),
		VerificationContinueURL:  envOr("VERIFICATION_CONTINUE_URL", "https://schoolchow.com/verifyemail"),
		PasswordResetContinueURL: envOr("PASSWORD_RESET_CONTINUE_URL", "https://schoolchow.com/resetpassword"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		LockTTL:                  durationOr("REGISTRATION_LOCK_TTL", 30*time.Second),
		KafkaBrokers:             os.Getenv("KAFKA_BROKERS"),
		AuditTopic:               envOr("AUDIT_TOPIC", "account.lifecycle"),
		AdminPIN:                 os.Getenv("ADMIN_PIN"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
