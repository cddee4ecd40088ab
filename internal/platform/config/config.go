package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	// Kafka settings for the audit outbox publisher. Empty brokers disable
	// publishing; events stay queued in the outbox table.
	KafkaBrokers []string
	AuditTopic   string

	RequestTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("QUIVERBOOK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "quiverbook.audit"
	}

	return Server{
		Addr:           addr,
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      "quiverbook",
		JWTAudience:    "quiverbook-api",
		KafkaBrokers:   brokers,
		AuditTopic:     topic,
		RequestTimeout: 30 * time.Second,
	}
}
