package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries all runtime settings, loaded from the environment with
// sensible development defaults.
type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	StaffUsername string
	StaffPassword string
	JWTSecret     string

	// AuthCheckTimeout bounds the optional session check; on expiry the
	// request proceeds as "no session" instead of hanging.
	AuthCheckTimeout time.Duration
	// RedirectDelaySec is how long the shell shows the confirmation before
	// following a configured redirect.
	RedirectDelaySec int
}

// Load reads configuration from the environment
func Load() *Config {
	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "campusforms"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:  getEnv("HTTP_PORT", "8080"),

		StaffUsername: getEnv("STAFF_USERNAME", "admin"),
		StaffPassword: getEnv("STAFF_PASSWORD", "password123"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),

		AuthCheckTimeout: getEnvDuration("AUTH_CHECK_TIMEOUT", 3*time.Second),
		RedirectDelaySec: getEnvInt("REDIRECT_DELAY_SEC", 3),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
