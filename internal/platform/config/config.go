package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	Redis         RedisConfig

	// SessionStaleAfter is the age at which an open work session is treated
	// as abandoned and auto-closed by the next start attempt. Operational
	// policy, not a structural invariant, so it is configurable.
	SessionStaleAfter time.Duration

	// SessionStrictEnd disables the legacy endSession fallback that closes
	// the caller's most recent active session when the supplied id does not
	// match. Strict mode fails with not-found instead.
	SessionStrictEnd bool

	// DirectoryCacheTTL bounds how long beneficiary/role lookups may be
	// served from cache.
	DirectoryCacheTTL time.Duration
}

// RedisConfig captures Redis connection settings. Empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CASEWORKS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		SessionStaleAfter: durationFromEnv("SESSION_STALE_AFTER", 12*time.Hour),
		SessionStrictEnd:  os.Getenv("SESSION_STRICT_END") == "true",
		DirectoryCacheTTL: durationFromEnv("DIRECTORY_CACHE_TTL", 5*time.Minute),
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
