package shared

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string
	MySQLDSN    string
	PostgresDSN string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret  string
	AuthCookie string

	WriteRatePerSec float64
	WriteBurst      int

	FeedBase      string
	FeedKey       string
	ImportWorkers int
}

// Load reads the environment, after an optional .env in the working directory.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number; using default")
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ":9100"),
		StoreDriver:     env("STORE_DRIVER", DriverMySQL),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/iconproperties?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		PostgresDSN:     env("POSTGRES_DSN", "host=localhost port=5432 user=icon password=icon dbname=iconproperties sslmode=disable"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		JWTSecret:       env("JWT_SECRET", ""),
		AuthCookie:      env("AUTH_COOKIE", "auth-token"),
		WriteRatePerSec: atof("WRITE_RATE_PER_SEC", 1),
		WriteBurst:      atoi("WRITE_BURST", 10),
		FeedBase:        env("FEED_BASE_URL", ""),
		FeedKey:         env("FEED_API_KEY", ""),
		ImportWorkers:   atoi("IMPORT_WORKERS", 8),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; every admin write will be rejected")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
