package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const insecureDevSecret = "dev-insecure-secret-change-me"

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	DBDriver    string // mysql | sqlite
	MySQLDSN    string
	SQLitePath  string
	AutoMigrate bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	SecretKey  string
	TokenTTL   time.Duration
	RefreshTTL time.Duration

	MediaRoot      string
	BaseURL        string
	MaxUploadBytes int64

	AuthRPS   int
	AuthBurst int
	// TrustedProxies lists the addresses or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed.
	TrustedProxies string

	SeedFile    string
	SeedWorkers int
}

// Load reads the environment, after pulling in a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg(".env loaded")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8000"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		DBDriver:       env("DB_DRIVER", "mysql"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4&loc=UTC"),
		SQLitePath:     env("SQLITE_PATH", "hotels.db"),
		AutoMigrate:    env("AUTO_MIGRATE", "true") == "true",
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		SecretKey:      env("SECRET_KEY", ""),
		TokenTTL:       time.Duration(atoi("TOKEN_TTL_HOURS", 24)) * time.Hour,
		RefreshTTL:     time.Duration(atoi("REFRESH_TTL_HOURS", 24*7)) * time.Hour,
		MediaRoot:      env("MEDIA_ROOT", "media"),
		BaseURL:        env("BASE_URL", "http://127.0.0.1:8000"),
		MaxUploadBytes: int64(atoi("MAX_UPLOAD_BYTES", 10<<20)),
		AuthRPS:        atoi("AUTH_RPS", 5),
		AuthBurst:      atoi("AUTH_BURST", 10),
		TrustedProxies: env("TRUSTED_PROXIES", ""),
		SeedFile:       env("SEED_FILE", ""),
		SeedWorkers:    atoi("SEED_WORKERS", 4),
	}
	if c.SecretKey == "" {
		log.Warn().Msg("SECRET_KEY is empty; using an insecure development secret")
		c.SecretKey = insecureDevSecret
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
