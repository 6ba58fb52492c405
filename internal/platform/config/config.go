// Package config loads service configuration from the environment so main
// stays lean. Every variable is prefixed MUSTER_.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures everything the server needs at startup. Backends are
// optional: with no DATABASE_URL the server runs on in-memory stores, with
// no REDIS_URL rollout timelines are recomputed per request, with no
// KAFKA_BROKERS audit events stay on the in-process sink.
type Config struct {
	Addr string `envconfig:"ADDR" default:":8080"`

	DatabaseURL  string   `envconfig:"DATABASE_URL"`
	RedisURL     string   `envconfig:"REDIS_URL"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_AUDIT_TOPIC" default:"muster.audit"`

	JWTSigningKey string `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`

	// MachineTokenHash is the bcrypt hash of the fleet enrollment token.
	// Empty disables machine authentication on check-in endpoints.
	MachineTokenHash string `envconfig:"MACHINE_TOKEN_HASH"`

	// RolloutCacheTTL bounds staleness of memoized rollout timelines. The
	// computation is deterministic per (deployment, asOf) so the TTL only
	// needs to cover catalog edits.
	RolloutCacheTTL time.Duration `envconfig:"ROLLOUT_CACHE_TTL" default:"5m"`

	// ActiveStatuses are the machine statuses that participate in
	// domain/scope visibility sets.
	ActiveStatuses []string `envconfig:"ACTIVE_STATUSES" default:"active,provisioned"`

	Redis RedisConfig
}

// RedisConfig tunes the shared redis client.
type RedisConfig struct {
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// FromEnv builds a Config from MUSTER_-prefixed environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("muster", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
