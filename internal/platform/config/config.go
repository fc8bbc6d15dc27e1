package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevSigningKey signs caller tokens in development when CALLER_SIGNING_KEY is
// unset. It is public, so it is never accepted outside development.
const DevSigningKey = "dev-secret-key-change-in-production"

// ErrSigningKeyRequired is returned by Validate outside development when no
// caller signing key is configured.
var ErrSigningKeyRequired = errors.New("CALLER_SIGNING_KEY must be set outside development")

// Registry backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr             string
	Environment      string
	CallerSigningKey string
	CallerTokenTTL   time.Duration
	DevOptInEnabled  bool

	Issuer   IssuerConfig
	Registry RegistryConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
}

// IssuerConfig holds the two identities the lifecycle depends on.
type IssuerConfig struct {
	// AdminAddress is fixed for the lifetime of the process.
	AdminAddress string
	// ServiceAddress is the custody account and asset authority.
	ServiceAddress string
}

type RegistryConfig struct {
	Backend     string
	DatabaseURL string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

type LedgerConfig struct {
	FirstAssetID     uint64
	FailureThreshold int
	Cooldown         time.Duration
}

// IsDev reports whether development-only routes may be mounted.
func (s Server) IsDev() bool {
	return s.Environment == "" || s.Environment == "dev" || s.Environment == "local"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	admin := os.Getenv("ISSUER_ADMIN_ADDRESS")
	if admin == "" {
		// The deployer becomes admin unless one is named explicitly.
		admin = os.Getenv("ISSUER_DEPLOYER_ADDRESS")
	}

	env := getEnv("CREDVERIFY_ENV", "dev")

	cfg := Server{
		Addr:             getEnv("CREDVERIFY_ADDR", ":8080"),
		Environment:      env,
		CallerSigningKey: os.Getenv("CALLER_SIGNING_KEY"),
		CallerTokenTTL:   getDuration("CALLER_TOKEN_TTL", time.Hour),
		DevOptInEnabled:  getBool("DEV_OPT_IN_ENABLED", env == "dev"),
		Issuer: IssuerConfig{
			AdminAddress:   strings.TrimSpace(admin),
			ServiceAddress: strings.TrimSpace(getEnv("ISSUER_SERVICE_ADDRESS", "CREDVERIFY-SERVICE")),
		},
		Registry: RegistryConfig{
			Backend:     strings.ToLower(getEnv("REGISTRY_BACKEND", BackendMemory)),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: getEnv("AUDIT_TOPIC", "credential.audit"),
		},
		Ledger: LedgerConfig{
			FirstAssetID:     uint64(getInt("LEDGER_FIRST_ASSET_ID", 1001)),
			FailureThreshold: getInt("LEDGER_FAILURE_THRESHOLD", 5),
			Cooldown:         getDuration("LEDGER_COOLDOWN", 10*time.Second),
		},
	}
	if cfg.CallerSigningKey == "" && cfg.IsDev() {
		cfg.CallerSigningKey = DevSigningKey
	}
	return cfg
}

// Validate rejects settings that would let anyone mint an accepted caller
// token: a missing key, or the published development key, outside development.
func (s Server) Validate() error {
	if s.IsDev() {
		return nil
	}
	if s.CallerSigningKey == "" || s.CallerSigningKey == DevSigningKey {
		return ErrSigningKeyRequired
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
