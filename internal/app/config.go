package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DSN      string
	Port     string
	Env      string
	LogLevel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	SeedFile string
	SeedDemo bool
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() Config {
	_ = godotenv.Load()

	c := Config{
		DSN:           strings.TrimSpace(os.Getenv("DB_DSN")),
		Port:          envOr("PORT", "8080"),
		Env:           strings.ToLower(envOr("APP_ENV", "development")),
		LogLevel:      strings.ToLower(envOr("LOG_LEVEL", "info")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LockTTL:       30 * time.Second,
		SeedFile:      strings.TrimSpace(os.Getenv("SEED_FILE")),
	}
	if c.DSN == "" {
		c.DSN = "host=" + envOr("DB_HOST", "localhost") +
			" user=" + envOr("DB_USER", envOr("POSTGRES_USER", "postgres")) +
			" password=" + envOr("DB_PASSWORD", envOr("POSTGRES_PASSWORD", "postgres")) +
			" dbname=" + envOr("DB_NAME", envOr("POSTGRES_DB", "sourcing")) +
			" port=" + envOr("DB_PORT", "5432") +
			" sslmode=" + envOr("DB_SSLMODE", "disable")
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Warn().Str("REDIS_DB", v).Msg("ignoring non numeric REDIS_DB")
		} else {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Warn().Str("LOCK_TTL", v).Msg("ignoring invalid LOCK_TTL")
		} else {
			c.LockTTL = d
		}
	}
	c.SeedDemo, _ = strconv.ParseBool(os.Getenv("SEED_DEMO"))
	return c
}

func (c Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
